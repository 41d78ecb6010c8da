package db

// IndexFieldType enumerates supported FT schema field types.
type IndexFieldType string

// Supported field types.
const (
	IndexFieldText    IndexFieldType = "text"
	IndexFieldTag     IndexFieldType = "tag"
	IndexFieldNumeric IndexFieldType = "numeric"
)

// IndexField describes one schema field of an FT index.
type IndexField struct {
	Name         string
	Type         IndexFieldType
	Weight       float64 // TEXT only; 0 means server default
	Sortable     bool
	TagSeparator string // TAG only
}

// IndexDefinition describes an FT index over hash documents.
// ScoreField names a per-document numeric field used as a score
// multiplier at query time (index-time document boost).
type IndexDefinition struct {
	Name       string
	Prefixes   []string
	ScoreField string
	Fields     []IndexField
}

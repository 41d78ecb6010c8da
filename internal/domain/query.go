package domain

// DefaultRows is the page size used when a query does not set one.
const DefaultRows = 10

// Query is the search request. Terms are passed to the index verbatim
// (after escaping); Filter is an optional raw filter clause in the
// index's own syntax.
type Query struct {
	Terms  string
	Filter string
	Rows   int // requested page size; negative means DefaultRows, 0 means all hits
	Start  int // absolute offset of the requested page
	Sort   string
	// IgnoreMaxRows disables the configured row cap for this query.
	IgnoreMaxRows bool
}

// EffectiveRows resolves the requested row count against the default.
func (q Query) EffectiveRows() int {
	if q.Rows < 0 {
		return DefaultRows
	}
	return q.Rows
}

// RawHit is a single (id, score) pair as returned by the index, before
// any permission filtering. Fields carries the stored document fields
// returned alongside the hit.
type RawHit struct {
	ID     string
	Path   string
	Score  float64
	Fields map[string]string
}

// RawResult is the ordered raw hit list for one over-fetched query.
type RawResult struct {
	Total int64 // the index's own total hit count for the query
	Hits  []RawHit
}

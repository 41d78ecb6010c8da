package domain

import "time"

// Priority property values and their index-time boost multipliers.
const (
	PriorityProperty = "search.priority"

	PriorityLow  = "low"
	PriorityHigh = "high"
	PriorityMax  = "max"

	BoostLow     = 0.75
	BoostDefault = 1.0
	BoostHigh    = 1.25
	BoostMax     = 1.5
)

// BoostForPriority maps the 3-level priority property to a fixed
// multiplier. Unknown or empty values get the default boost.
func BoostForPriority(priority string) float64 {
	switch priority {
	case PriorityLow:
		return BoostLow
	case PriorityHigh:
		return BoostHigh
	case PriorityMax:
		return BoostMax
	default:
		return BoostDefault
	}
}

// Document is a flat, typed field set ready for indexing. Fields holds
// every mapped field including the per-locale content fields; the
// boost is applied at index time and never recomputed per query.
type Document struct {
	ID              string
	RootPath        string
	Type            string
	ResourceLocales []string
	ContentLocales  []string
	Fields          map[string]string
	DateCreated     time.Time
	DateModified    time.Time
	Boost           float64
}

// Field returns a mapped field value, or "" if absent.
func (d *Document) Field(name string) string {
	if d.Fields == nil {
		return ""
	}
	return d.Fields[name]
}

package domain

// Hit is a permission-checked search hit placed on a result page.
// Resource is the live stored resource the hit resolved to.
type Hit struct {
	ID       string
	Path     string
	Score    float64
	Fields   map[string]string
	Resource *Resource
}

// ResultPage is one page of permission-filtered results. Start, End
// and Page describe the window actually served, which differs from
// the requested window when the fallback branch renumbered the page.
type ResultPage struct {
	Start           int
	End             int
	Page            int
	Rows            int
	RawHitCount     int64
	VisibleHitCount int64
	MaxScore        float64
	Items           []Hit
}

// Renumbered reports whether the served window differs from the one
// the query literally asked for.
func (p *ResultPage) Renumbered(requestedStart int) bool {
	return p.Start != requestedStart
}

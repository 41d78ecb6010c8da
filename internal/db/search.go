package db

// RankedQuery is the input for a scored FT.SEARCH. Results come back
// in descending score order unless SortBy overrides the ranking.
type RankedQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	SortBy       string
	SortDesc     bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int64
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// Package search adapts the store's FT search into the ranked raw-hit
// stream consumed by the read path. It owns the over-fetch query
// translation; permission filtering happens a layer above.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/cairnforge/vfsearch/internal/db"
	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/fields"
)

// store is the consumer interface for ranked search operations (ISP).
type store interface {
	SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store  store
	index  string
	prefix string
}

// New creates a search repository over the given FT index.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, index: indexName, prefix: keyPrefix}
}

// RankedSearch issues one over-fetched query starting at offset 0 and
// returns the raw ranked hits plus the index's own total hit count.
func (r *Repo) RankedSearch(
	ctx context.Context, q *domain.Query, fetchRows int,
) (*domain.RawResult, error) {
	rq := &db.RankedQuery{
		IndexName: r.index,
		Query:     buildQuery(q),
		Offset:    0,
		Limit:     fetchRows,
	}
	if q.Sort != "" {
		rq.SortBy, rq.SortDesc = parseSort(q.Sort)
	}

	sr, err := r.store.SearchRanked(ctx, rq)
	if err != nil {
		return nil, fmt.Errorf("ranked search: %w", err)
	}

	return r.parseResult(sr), nil
}

func (r *Repo) parseResult(sr *db.SearchResult) *domain.RawResult {
	if sr == nil {
		return &domain.RawResult{}
	}

	hits := make([]domain.RawHit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		path := strings.TrimPrefix(entry.Key, r.prefix)
		hits = append(hits, domain.RawHit{
			ID:     entry.Fields[fields.FieldID],
			Path:   path,
			Score:  entry.Score,
			Fields: entry.Fields,
		})
	}

	return &domain.RawResult{Total: sr.Total, Hits: hits}
}

// buildQuery renders the FT query string: escaped terms plus the raw
// filter clause. Empty terms match everything.
func buildQuery(q *domain.Query) string {
	terms := strings.TrimSpace(q.Terms)
	var query string
	if terms == "" {
		query = "*"
	} else {
		query = escapeTerms(terms)
	}
	if q.Filter != "" {
		query = q.Filter + " " + query
	}
	return query
}

// parseSort splits "field" / "field desc" / "field asc".
func parseSort(sort string) (field string, desc bool) {
	parts := strings.Fields(sort)
	if len(parts) == 0 {
		return "", false
	}
	field = parts[0]
	if len(parts) > 1 && strings.EqualFold(parts[1], "desc") {
		desc = true
	}
	return field, desc
}

func escapeTerms(s string) string {
	return termEscaper.Replace(s)
}

var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
)

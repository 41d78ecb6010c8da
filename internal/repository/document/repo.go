// Package document implements direct document retrieval by field
// value, bypassing ranked search. Path lookups hit the hash key
// directly; other fields go through a single-result FT query.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cairnforge/vfsearch/internal/db"
	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/fields"
)

// store is the consumer interface for document lookups (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
}

// Repo implements usecase-level document retrieval.
type Repo struct {
	store  store
	index  string
	prefix string
}

// New creates a document repository over the given FT index.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, index: indexName, prefix: keyPrefix}
}

// GetByField returns the first indexed document whose field equals the
// given value. Returns domain.ErrDocumentNotFound when nothing matches.
func (r *Repo) GetByField(ctx context.Context, field, value string) (*domain.Document, error) {
	if field == fields.FieldPath {
		return r.getByKey(ctx, r.prefix+value)
	}

	// Lookup fields are TAG fields in the index schema, so the query
	// uses tag syntax with the value escaped as a single literal token.
	sr, err := r.store.SearchRanked(ctx, &db.RankedQuery{
		IndexName: r.index,
		Query:     fmt.Sprintf("@%s:{%s}", field, escapeTag(value)),
		Offset:    0,
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("document lookup %s=%q: %w", field, value, err)
	}
	if len(sr.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s=%q", domain.ErrDocumentNotFound, field, value)
	}
	// FT RETURN-less hits already carry the full hash.
	return parseHashFields(sr.Entries[0].Fields), nil
}

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	` `, `\ `,
	`-`, `\-`,
	`.`, `\.`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`:`, `\:`,
	`/`, `\/`,
	`*`, `\*`,
	`~`, `\~`,
	`'`, `\'`,
	`"`, `\"`,
)

func (r *Repo) getByKey(ctx context.Context, key string) (*domain.Document, error) {
	raw, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, key)
		}
		return nil, fmt.Errorf("document lookup %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, key)
	}
	return parseHashFields(raw), nil
}

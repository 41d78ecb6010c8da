package document

import (
	"context"
	"errors"
	"testing"

	"github.com/cairnforge/vfsearch/internal/db"
	"github.com/cairnforge/vfsearch/internal/domain"
)

type mockStore struct {
	hashes map[string]map[string]string

	lastQuery *db.RankedQuery
	result    *db.SearchResult
	searchErr error
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	raw, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return raw, nil
}

func (m *mockStore) SearchRanked(_ context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.result, nil
}

func docHash() map[string]string {
	return map[string]string{
		"id":          "res-1",
		"path":        "/sites/a.txt",
		"type":        "plain",
		"content":     "hello world",
		"con_locales": "en",
		"modified":    "1700000001000",
		"__boost":     "1.25",
	}
}

func TestGetByField_PathHitsHashDirectly(t *testing.T) {
	s := &mockStore{hashes: map[string]map[string]string{
		"idx:doc:/sites/a.txt": docHash(),
	}}
	r := New(s, "docs", "idx:doc:")

	doc, err := r.GetByField(context.Background(), "path", "/sites/a.txt")
	if err != nil {
		t.Fatalf("GetByField: %v", err)
	}
	if s.lastQuery != nil {
		t.Error("path lookup must not issue an FT query")
	}
	if doc.ID != "res-1" || doc.RootPath != "/sites/a.txt" || doc.Type != "plain" {
		t.Errorf("document: got %+v", doc)
	}
	if doc.Field("content") != "hello world" {
		t.Errorf("content: got %q", doc.Field("content"))
	}
	if doc.Boost != 1.25 {
		t.Errorf("boost: got %f", doc.Boost)
	}
	if doc.DateModified.UnixMilli() != 1700000001000 {
		t.Errorf("modified: got %v", doc.DateModified)
	}
}

func TestGetByField_PathNotFound(t *testing.T) {
	r := New(&mockStore{hashes: map[string]map[string]string{}}, "docs", "idx:doc:")

	_, err := r.GetByField(context.Background(), "path", "/nope")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGetByField_IDUsesSingleResultQuery(t *testing.T) {
	s := &mockStore{result: &db.SearchResult{
		Total:   1,
		Entries: []db.SearchEntry{{Key: "idx:doc:/sites/a.txt", Fields: docHash()}},
	}}
	r := New(s, "docs", "idx:doc:")

	doc, err := r.GetByField(context.Background(), "id", "res-1")
	if err != nil {
		t.Fatalf("GetByField: %v", err)
	}

	if s.lastQuery.IndexName != "docs" || s.lastQuery.Limit != 1 {
		t.Errorf("query: got %+v", s.lastQuery)
	}
	// The id field is a TAG field: the lookup must use tag syntax with
	// the value escaped, not a parenthesized text query.
	if s.lastQuery.Query != `@id:{res\-1}` {
		t.Errorf("query string: got %q", s.lastQuery.Query)
	}
	if doc.ID != "res-1" {
		t.Errorf("document: got %+v", doc)
	}
}

func TestGetByField_TagValueEscaped(t *testing.T) {
	s := &mockStore{result: &db.SearchResult{}}
	r := New(s, "docs", "idx:doc:")

	_, err := r.GetByField(context.Background(), "type", "a b.c{d}")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if s.lastQuery.Query != `@type:{a\ b\.c\{d\}}` {
		t.Errorf("query string: got %q", s.lastQuery.Query)
	}
}

func TestGetByField_NoMatch(t *testing.T) {
	s := &mockStore{result: &db.SearchResult{}}
	r := New(s, "docs", "idx:doc:")

	_, err := r.GetByField(context.Background(), "id", "nope")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGetByField_SearchErrorWrapped(t *testing.T) {
	searchErr := errors.New("index missing")
	s := &mockStore{searchErr: searchErr}
	r := New(s, "docs", "idx:doc:")

	_, err := r.GetByField(context.Background(), "id", "res-1")
	if !errors.Is(err, searchErr) {
		t.Fatalf("expected wrapped search error, got %v", err)
	}
}

func TestParseHashFields_Defaults(t *testing.T) {
	doc := parseHashFields(map[string]string{
		"id":      "res-2",
		"path":    "/b.txt",
		"type":    "plain",
		"__boost": "garbage",
	})

	if doc.Boost != domain.BoostDefault {
		t.Errorf("boost: got %f, want default", doc.Boost)
	}
	if !doc.DateModified.IsZero() {
		t.Errorf("modified: got %v, want zero", doc.DateModified)
	}
	if len(doc.ContentLocales) != 0 {
		t.Errorf("content locales: got %v", doc.ContentLocales)
	}
}

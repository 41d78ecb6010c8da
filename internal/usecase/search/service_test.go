package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cairnforge/vfsearch/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	result        *domain.RawResult
	err           error
	lastFetchRows int
}

func (m *mockRepo) RankedSearch(_ context.Context, _ *domain.Query, fetchRows int) (*domain.RawResult, error) {
	m.lastFetchRows = fetchRows
	return m.result, m.err
}

type mockResolver struct {
	vanished map[string]bool
	err      error
}

func (m *mockResolver) Resolve(_ context.Context, id string) (*domain.Resource, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.vanished[id] {
		return nil, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, id)
	}
	return &domain.Resource{ID: id, RootPath: "/sites/" + id}, nil
}

type mockOracle struct {
	denied map[string]bool
	err    error
}

func (m *mockOracle) CanRead(_ context.Context, _, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return !m.denied[id], nil
}

// rawHits builds n descending-score hits with IDs hit-0 .. hit-n-1.
func rawHits(n int) []domain.RawHit {
	hits := make([]domain.RawHit, n)
	for i := range hits {
		hits[i] = domain.RawHit{
			ID:    fmt.Sprintf("hit-%d", i),
			Path:  fmt.Sprintf("/sites/hit-%d", i),
			Score: 1.0 - float64(i)*0.01,
		}
	}
	return hits
}

// denyEvery marks every nth hit (0-based: positions n-1, 2n-1, ...) denied.
func denyEvery(n, total int) map[string]bool {
	denied := make(map[string]bool)
	for i := n - 1; i < total; i += n {
		denied[fmt.Sprintf("hit-%d", i)] = true
	}
	return denied
}

func newService(repo Repository, res ResourceResolver, oracle PermissionOracle) *Service {
	return New(repo, res, oracle, 0, nil)
}

// --- Tests ---

func TestSearch_AllPermitted_FirstPage(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 23, Hits: rawHits(23)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Items))
	}
	if page.Start != 0 || page.End != 10 || page.Page != 1 {
		t.Errorf("window: got start=%d end=%d page=%d, want 0/10/1", page.Start, page.End, page.Page)
	}
	if page.RawHitCount != 23 || page.VisibleHitCount != 23 {
		t.Errorf("counts: got raw=%d visible=%d, want 23/23", page.RawHitCount, page.VisibleHitCount)
	}
	if page.Items[0].ID != "hit-0" {
		t.Errorf("first item: got %s, want hit-0", page.Items[0].ID)
	}
	if page.MaxScore != 1.0 {
		t.Errorf("max score: got %f, want 1.0", page.MaxScore)
	}
	if page.Items[0].Resource == nil {
		t.Error("expected resolved resource on hit")
	}
}

func TestSearch_DeniedHitsDecrementVisibleCount(t *testing.T) {
	// 30 raw hits, every 4th denied: 7 denied within the first 28.
	repo := &mockRepo{result: &domain.RawResult{Total: 30, Hits: rawHits(30)}}
	oracle := &mockOracle{denied: denyEvery(4, 30)}
	svc := newService(repo, &mockResolver{}, oracle)

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10, Start: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 30 raw, 7 denied -> 23 permitted; window [20, 30) serves the last 3.
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.VisibleHitCount != 23 {
		t.Errorf("visible count: got %d, want 23", page.VisibleHitCount)
	}
	if page.RawHitCount != 30 {
		t.Errorf("raw count: got %d, want 30", page.RawHitCount)
	}
	if page.Start != 20 || page.Page != 3 {
		t.Errorf("window: got start=%d page=%d, want 20/3", page.Start, page.Page)
	}
	for _, h := range page.Items {
		if oracle.denied[h.ID] {
			t.Errorf("denied hit %s leaked onto the page", h.ID)
		}
	}
}

func TestSearch_FallbackServesLastNonEmptyPage(t *testing.T) {
	// 23 permitted out of 30; page 4 (start 30) holds none of them.
	repo := &mockRepo{result: &domain.RawResult{Total: 30, Hits: rawHits(30)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{denied: denyEvery(4, 30)})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10, Start: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items from fallback, got %d", len(page.Items))
	}
	if page.Start != 20 || page.End != 23 || page.Page != 3 {
		t.Errorf("served window: got start=%d end=%d page=%d, want 20/23/3", page.Start, page.End, page.Page)
	}
	if !page.Renumbered(30) {
		t.Error("expected the page to report renumbering")
	}

	// Max score is recomputed over the served items only.
	want := page.Items[0].Score
	for _, h := range page.Items {
		if h.Score > want {
			want = h.Score
		}
	}
	if page.MaxScore != want {
		t.Errorf("max score: got %f, want %f", page.MaxScore, want)
	}
}

func TestSearch_FallbackOnExactPageBoundary(t *testing.T) {
	// Exactly 20 permitted; asking far past them serves the full page 2.
	repo := &mockRepo{result: &domain.RawResult{Total: 20, Hits: rawHits(20)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10, Start: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Items))
	}
	if page.Start != 10 || page.End != 20 || page.Page != 2 {
		t.Errorf("served window: got start=%d end=%d page=%d, want 10/20/2", page.Start, page.End, page.Page)
	}
}

func TestSearch_VanishedResourceSkippedSilently(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 5, Hits: rawHits(5)}}
	resolver := &mockResolver{vanished: map[string]bool{"hit-2": true}}
	svc := newService(repo, resolver, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(page.Items))
	}
	// A vanished hit is not a permission rejection: the visible count
	// stays at the raw total.
	if page.VisibleHitCount != 5 {
		t.Errorf("visible count: got %d, want 5", page.VisibleHitCount)
	}
	for _, h := range page.Items {
		if h.ID == "hit-2" {
			t.Error("vanished hit served")
		}
	}
}

func TestSearch_AllDenied(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 5, Hits: rawHits(5)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{denied: denyEvery(1, 5)})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(page.Items))
	}
	if page.VisibleHitCount != 0 {
		t.Errorf("visible count: got %d, want 0", page.VisibleHitCount)
	}
	if page.MaxScore != 0 {
		t.Errorf("max score: got %f, want 0", page.MaxScore)
	}
}

func TestSearch_StartPastEmptyResult(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10, Start: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A start past the result set snaps back to the hit count; the
	// window must stay ordered.
	if page.Start != 0 || page.End != 0 {
		t.Errorf("window: got start=%d end=%d, want 0/0", page.Start, page.End)
	}
	if page.Start < 0 || page.Start > page.End {
		t.Errorf("window out of order: start=%d end=%d", page.Start, page.End)
	}
	if len(page.Items) != 0 {
		t.Errorf("items: got %d, want 0", len(page.Items))
	}
}

func TestSearch_StartPastAllDeniedHits(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 5, Hits: rawHits(5)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{denied: denyEvery(1, 5)})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10, Start: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Start != 5 || page.End != 5 {
		t.Errorf("window: got start=%d end=%d, want 5/5", page.Start, page.End)
	}
	if page.Start < 0 || page.Start > page.End {
		t.Errorf("window out of order: start=%d end=%d", page.Start, page.End)
	}
	if len(page.Items) != 0 || page.VisibleHitCount != 0 {
		t.Errorf("expected an empty page, got %d items visible=%d", len(page.Items), page.VisibleHitCount)
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 0 || page.RawHitCount != 0 || page.VisibleHitCount != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
	if page.Page != 1 {
		t.Errorf("page: got %d, want 1", page.Page)
	}
}

func TestSearch_NoDuplicationAcrossPages(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 30, Hits: rawHits(30)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{denied: denyEvery(4, 30)})

	seen := make(map[string]int)
	for start := 0; start < 30; start += 10 {
		page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10, Start: start})
		if err != nil {
			t.Fatalf("start=%d: unexpected error: %v", start, err)
		}
		for _, h := range page.Items {
			seen[h.ID]++
		}
	}

	for id, n := range seen {
		if n > 1 {
			t.Errorf("hit %s served %d times across pages", id, n)
		}
	}
	if len(seen) != 23 {
		t.Errorf("expected 23 distinct permitted hits across pages, got %d", len(seen))
	}
}

func TestSearch_OracleErrorAbortsQuery(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 5, Hits: rawHits(5)}}
	oracleErr := errors.New("acl backend down")
	svc := newService(repo, &mockResolver{}, &mockOracle{err: oracleErr})

	_, err := svc.Search(context.Background(), "alice", &domain.Query{Terms: "rabbit", Rows: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	var se *domain.SearchError
	if !errors.As(err, &se) {
		t.Fatalf("expected *domain.SearchError, got %T", err)
	}
	if !errors.Is(err, oracleErr) {
		t.Error("expected the oracle error in the chain")
	}
	if se.Query != "rabbit" {
		t.Errorf("query: got %q, want %q", se.Query, "rabbit")
	}
}

func TestSearch_ResolverErrorAbortsQuery(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 5, Hits: rawHits(5)}}
	resolveErr := errors.New("store timeout")
	svc := newService(repo, &mockResolver{err: resolveErr}, &mockOracle{})

	_, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10})
	var se *domain.SearchError
	if !errors.As(err, &se) {
		t.Fatalf("expected *domain.SearchError, got %v", err)
	}
	if !errors.Is(err, resolveErr) {
		t.Error("expected the resolver error in the chain")
	}
}

func TestSearch_RepoErrorWrapped(t *testing.T) {
	repoErr := errors.New("connection reset")
	svc := newService(&mockRepo{err: repoErr}, &mockResolver{}, &mockOracle{})

	_, err := svc.Search(context.Background(), "alice", &domain.Query{Terms: "a b", Rows: 10})
	var se *domain.SearchError
	if !errors.As(err, &se) {
		t.Fatalf("expected *domain.SearchError, got %v", err)
	}
	if se.Query != "a+b" {
		t.Errorf("query should be url-encoded: got %q", se.Query)
	}
}

func TestSearch_RowsClampedToMax(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 100, Hits: rawHits(100)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Rows != DefaultMaxRows {
		t.Errorf("rows: got %d, want %d", page.Rows, DefaultMaxRows)
	}
	if len(page.Items) != DefaultMaxRows {
		t.Errorf("items: got %d, want %d", len(page.Items), DefaultMaxRows)
	}
}

func TestSearch_IgnoreMaxRows(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 100, Hits: rawHits(100)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 100, IgnoreMaxRows: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Rows != 100 {
		t.Errorf("rows: got %d, want 100", page.Rows)
	}
	if len(page.Items) != 100 {
		t.Errorf("items: got %d, want 100", len(page.Items))
	}
}

func TestSearch_DefaultRows(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 30, Hits: rawHits(30)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Rows != domain.DefaultRows {
		t.Errorf("rows: got %d, want %d", page.Rows, domain.DefaultRows)
	}
}

func TestSearch_OverFetchWindow(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 30, Hits: rawHits(30)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	_, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 10, Start: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Page 3 of 10 rows: 5*10*3 + 20.
	if repo.lastFetchRows != 170 {
		t.Errorf("fetch rows: got %d, want 170", repo.lastFetchRows)
	}
}

func TestSearch_RowsZeroFetchesEverything(t *testing.T) {
	repo := &mockRepo{result: &domain.RawResult{Total: 30, Hits: rawHits(30)}}
	svc := newService(repo, &mockResolver{}, &mockOracle{})

	page, err := svc.Search(context.Background(), "alice", &domain.Query{Rows: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFetchRows != allRowsFetchLimit {
		t.Errorf("fetch rows: got %d, want %d", repo.lastFetchRows, allRowsFetchLimit)
	}
	if len(page.Items) != 30 {
		t.Errorf("items: got %d, want 30", len(page.Items))
	}
	if page.End != 30 {
		t.Errorf("end: got %d, want 30", page.End)
	}
}

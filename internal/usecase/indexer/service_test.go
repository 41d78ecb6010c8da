package indexer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/extract"
	"github.com/cairnforge/vfsearch/internal/fields"
)

// --- Mocks ---

type mockFactory struct {
	result *fields.ExtractionResult
	err    error
}

func (m *mockFactory) Extract(_ context.Context, _ *domain.Resource) (*fields.ExtractionResult, error) {
	return m.result, m.err
}

type mockFactories struct {
	byType map[string]extract.Factory
}

func (m *mockFactories) Lookup(resourceType string) (extract.Factory, error) {
	f, ok := m.byType[resourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownResourceType, resourceType)
	}
	return f, nil
}

type mockBuilder struct{}

func (mockBuilder) BuildDocument(
	res *domain.Resource, _ *fields.ExtractionResult, _ []language.Tag,
) *domain.Document {
	return &domain.Document{ID: res.ID, RootPath: res.RootPath, Type: res.Type}
}

type mockWriter struct {
	updates   []string
	deletes   []string
	commits   int
	updateErr error
	commitErr error
}

func (m *mockWriter) Update(path string, _ *domain.Document) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, path)
	return nil
}

func (m *mockWriter) Delete(pathPrefix string) error {
	m.deletes = append(m.deletes, pathPrefix)
	return nil
}

func (m *mockWriter) Commit(_ context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	return nil
}

func newTestService(w Writer) *Service {
	factories := &mockFactories{byType: map[string]extract.Factory{
		"plain": &mockFactory{result: &fields.ExtractionResult{Content: "hello"}},
		"broken": &mockFactory{
			err: domain.NewExtractionError("/sites/broken.txt", errors.New("corrupt stream")),
		},
	}}
	return New(factories, mockBuilder{}, w, []language.Tag{language.English}, nil)
}

func res(path, typ string) *domain.Resource {
	return &domain.Resource{ID: path, RootPath: path, Type: typ}
}

// --- Tests ---

func TestIndexResources_CommitsBatch(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(w)

	rep, err := svc.IndexResources(context.Background(), []*domain.Resource{
		res("/sites/a.txt", "plain"),
		res("/sites/b.txt", "plain"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Indexed != 2 || rep.Skipped != 0 {
		t.Errorf("report: got %+v, want indexed=2", rep)
	}
	if len(w.updates) != 2 {
		t.Errorf("updates: got %d, want 2", len(w.updates))
	}
	if w.commits != 1 {
		t.Errorf("commits: got %d, want 1", w.commits)
	}
}

func TestIndexResources_SkipsFailingExtraction(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(w)

	rep, err := svc.IndexResources(context.Background(), []*domain.Resource{
		res("/sites/a.txt", "plain"),
		res("/sites/broken.txt", "broken"),
		res("/sites/b.txt", "plain"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Indexed != 2 || rep.Skipped != 1 {
		t.Errorf("report: got %+v, want indexed=2 skipped=1", rep)
	}
	if w.commits != 1 {
		t.Errorf("commits: got %d, want 1", w.commits)
	}
}

func TestIndexResources_SkipsUnknownType(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(w)

	rep, err := svc.IndexResources(context.Background(), []*domain.Resource{
		res("/sites/a.bin", "binary"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Indexed != 0 || rep.Skipped != 1 {
		t.Errorf("report: got %+v, want skipped=1", rep)
	}
}

func TestIndexResources_WriterErrorAborts(t *testing.T) {
	w := &mockWriter{updateErr: domain.ErrWriterClosed}
	svc := newTestService(w)

	_, err := svc.IndexResources(context.Background(), []*domain.Resource{
		res("/sites/a.txt", "plain"),
	})
	if !errors.Is(err, domain.ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
	if w.commits != 0 {
		t.Error("no commit should happen after a write error")
	}
}

func TestIndexResources_CommitErrorReported(t *testing.T) {
	commitErr := errors.New("pipeline failed")
	w := &mockWriter{commitErr: commitErr}
	svc := newTestService(w)

	_, err := svc.IndexResources(context.Background(), []*domain.Resource{
		res("/sites/a.txt", "plain"),
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestDeleteResources_CommitsPrefixes(t *testing.T) {
	w := &mockWriter{}
	svc := newTestService(w)

	rep, err := svc.DeleteResources(context.Background(), []string{"/sites/old", "/sites/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Deleted != 2 {
		t.Errorf("deleted: got %d, want 2", rep.Deleted)
	}
	if len(w.deletes) != 2 || w.deletes[0] != "/sites/old" {
		t.Errorf("deletes: got %v", w.deletes)
	}
	if w.commits != 1 {
		t.Errorf("commits: got %d, want 1", w.commits)
	}
}

// Package indexer implements the write path: resources go through
// type-specific extraction and field mapping into the buffered index
// writer, committed once per batch.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/metrics"
)

// Report summarizes one committed batch.
type Report struct {
	Indexed int
	Skipped int
	Deleted int
}

// Service drives batch indexing and deletion.
type Service struct {
	factories Factories
	builder   Builder
	writer    Writer
	defaults  []language.Tag
	log       *zap.Logger
}

// New creates an indexer service. defaults are the locales assumed for
// resources that carry no locale signal of their own.
func New(
	factories Factories, builder Builder, writer Writer,
	defaults []language.Tag, log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		factories: factories,
		builder:   builder,
		writer:    writer,
		defaults:  defaults,
		log:       log,
	}
}

// IndexResources extracts and indexes a batch, then commits. Resources
// with an unregistered type or a failing extraction are skipped with a
// warning; the rest of the batch still goes through.
func (s *Service) IndexResources(ctx context.Context, resources []*domain.Resource) (*Report, error) {
	rep := &Report{}
	for _, res := range resources {
		if err := s.indexOne(ctx, res); err != nil {
			if errors.Is(err, domain.ErrUnknownResourceType) || errors.Is(err, domain.ErrExtraction) {
				s.log.Warn("skipping resource",
					zap.String("path", res.RootPath),
					zap.String("type", res.Type),
					zap.Error(err),
				)
				rep.Skipped++
				metrics.IndexDocumentsTotal.WithLabelValues("skipped").Inc()
				continue
			}
			return nil, fmt.Errorf("index %s: %w", res.RootPath, err)
		}
		rep.Indexed++
		metrics.IndexDocumentsTotal.WithLabelValues("indexed").Inc()
	}

	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	s.log.Info("batch indexed",
		zap.Int("indexed", rep.Indexed),
		zap.Int("skipped", rep.Skipped),
	)
	return rep, nil
}

// DeleteResources removes whole subtrees by path prefix and commits.
func (s *Service) DeleteResources(ctx context.Context, pathPrefixes []string) (*Report, error) {
	for _, prefix := range pathPrefixes {
		if err := s.writer.Delete(prefix); err != nil {
			return nil, fmt.Errorf("delete %s: %w", prefix, err)
		}
		metrics.IndexDocumentsTotal.WithLabelValues("deleted").Inc()
	}
	if err := s.commit(ctx); err != nil {
		return nil, err
	}
	return &Report{Deleted: len(pathPrefixes)}, nil
}

func (s *Service) indexOne(ctx context.Context, res *domain.Resource) error {
	factory, err := s.factories.Lookup(res.Type)
	if err != nil {
		return err
	}
	ex, err := factory.Extract(ctx, res)
	if err != nil {
		return err
	}
	doc := s.builder.BuildDocument(res, ex, s.defaults)
	return s.writer.Update(res.RootPath, doc)
}

func (s *Service) commit(ctx context.Context) error {
	began := time.Now()
	if err := s.writer.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	metrics.IndexCommitDuration.Observe(time.Since(began).Seconds())
	return nil
}

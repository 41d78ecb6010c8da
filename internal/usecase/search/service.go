// Package search implements the permission-aware read path: one
// over-fetched ranked query, a sequential permission scan, and page
// assembly with the all-hidden fallback.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/metrics"
)

const (
	// DefaultMaxRows caps the page size unless the query opts out.
	DefaultMaxRows = 50

	// overFetchFactor sizes the raw window so a page survives heavy
	// permission filtering without a second round trip.
	overFetchFactor = 5

	// allRowsFetchLimit bounds the raw window when a query asks for
	// every hit (rows = 0).
	allRowsFetchLimit = 1_000_000
)

// Service executes permission-filtered paginated searches.
type Service struct {
	repo      Repository
	resources ResourceResolver
	oracle    PermissionOracle
	maxRows   int
	log       *zap.Logger
}

// New creates a search service. maxRows <= 0 selects DefaultMaxRows.
func New(
	repo Repository, resources ResourceResolver, oracle PermissionOracle,
	maxRows int, log *zap.Logger,
) *Service {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		resources: resources,
		oracle:    oracle,
		maxRows:   maxRows,
		log:       log,
	}
}

// Search runs one ranked query and filters the hits through the
// permission oracle for the given principal. Every error is returned
// wrapped in *domain.SearchError.
func (s *Service) Search(
	ctx context.Context, principal string, q *domain.Query,
) (*domain.ResultPage, error) {
	began := time.Now()
	page, err := s.search(ctx, principal, q)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.Observe(time.Since(began).Seconds())
	if err == nil {
		metrics.SearchHitsHidden.Add(float64(page.RawHitCount - page.VisibleHitCount))
	}
	return page, err
}

func (s *Service) search(
	ctx context.Context, principal string, q *domain.Query,
) (*domain.ResultPage, error) {
	rows := q.EffectiveRows()
	if rows > s.maxRows && !q.IgnoreMaxRows {
		s.log.Warn("requested rows exceed the configured maximum",
			zap.Int("requested", rows),
			zap.Int("max", s.maxRows),
		)
		rows = s.maxRows
	}
	start := q.Start
	if start < 0 {
		start = 0
	}

	fetchRows := allRowsFetchLimit
	if rows > 0 {
		requestedPage := start/rows + 1
		fetchRows = overFetchFactor*rows*requestedPage + start
	}

	raw, err := s.repo.RankedSearch(ctx, q, fetchRows)
	if err != nil {
		return nil, domain.NewSearchError(q.Terms, err)
	}

	// The page window [start, end) counts permitted hits only. Both
	// bounds are clamped to the raw hit count: a start past the result
	// set snaps back so the window stays ordered, and end never points
	// past the hits.
	if start > int(raw.Total) {
		start = int(raw.Total)
	}
	end := int(raw.Total)
	if rows > 0 && start+rows < end {
		end = start + rows
	}

	visible := raw.Total
	var pageItems, allPermitted []domain.Hit
	var maxScore float64
	cnt := 0

	for i := range raw.Hits {
		if cnt >= end {
			break
		}
		hit := &raw.Hits[i]

		res, err := s.resources.Resolve(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, domain.ErrResourceNotFound) {
				// The resource vanished after indexing. It is neither
				// served nor counted against the visible total.
				s.log.Debug("dropping hit for vanished resource",
					zap.String("id", hit.ID),
					zap.String("path", hit.Path),
				)
				continue
			}
			return nil, domain.NewSearchError(q.Terms, fmt.Errorf("resolve hit %s: %w", hit.ID, err))
		}

		ok, err := s.oracle.CanRead(ctx, principal, hit.ID)
		if err != nil {
			return nil, domain.NewSearchError(q.Terms, fmt.Errorf("permission check %s: %w", hit.ID, err))
		}
		if !ok {
			visible--
			continue
		}

		h := domain.Hit{
			ID:       hit.ID,
			Path:     hit.Path,
			Score:    hit.Score,
			Fields:   hit.Fields,
			Resource: res,
		}
		if cnt >= start {
			pageItems = append(pageItems, h)
			if h.Score > maxScore {
				maxScore = h.Score
			}
		}
		allPermitted = append(allPermitted, h)
		cnt++
	}

	page := 1
	if rows > 0 {
		page = start/rows + 1
	}

	// Fallback: the requested window held no permitted hit but earlier
	// pages did. Serve the last non-empty page and report the window
	// actually served.
	if len(pageItems) == 0 && len(allPermitted) > 0 && rows > 0 {
		show := len(allPermitted) % rows
		if show == 0 {
			show = rows
		}
		servedStart := len(allPermitted) - show
		pageItems = allPermitted[servedStart:]

		maxScore = 0
		for _, h := range pageItems {
			if h.Score > maxScore {
				maxScore = h.Score
			}
		}

		s.log.Debug("requested page empty after filtering, serving last page",
			zap.Int("requested_start", start),
			zap.Int("served_start", servedStart),
		)
		start = servedStart
		end = len(allPermitted)
		page = start/rows + 1
	}

	return &domain.ResultPage{
		Start:           start,
		End:             end,
		Page:            page,
		Rows:            rows,
		RawHitCount:     raw.Total,
		VisibleHitCount: visible,
		MaxScore:        maxScore,
		Items:           pageItems,
	}, nil
}

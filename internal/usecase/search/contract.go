package search

import (
	"context"

	"github.com/cairnforge/vfsearch/internal/domain"
)

// Repository defines the index contract for ranked search. fetchRows is
// the over-fetched window size; implementations always query from
// offset zero so the permission scan sees every leading hit.
type Repository interface {
	RankedSearch(ctx context.Context, q *domain.Query, fetchRows int) (*domain.RawResult, error)
}

// ResourceResolver maps a hit ID to the live stored resource. A hit
// whose resource no longer exists must yield domain.ErrResourceNotFound.
type ResourceResolver interface {
	Resolve(ctx context.Context, id string) (*domain.Resource, error)
}

// PermissionOracle decides whether a principal may read a resource.
// Errors abort the whole search; a plain "no" only hides the hit.
type PermissionOracle interface {
	CanRead(ctx context.Context, principal, id string) (bool, error)
}

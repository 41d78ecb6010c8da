// Package resource implements a hash-backed resource store with a
// reader-principal access list per resource. It backs both the
// resolver side of the read path and the permission oracle.
package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cairnforge/vfsearch/internal/db"
	"github.com/cairnforge/vfsearch/internal/domain"
)

// AnyPrincipal in the readers list grants read access to everyone.
const AnyPrincipal = "*"

// store is the consumer interface for resource storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo stores resources as hashes keyed by resource ID, each carrying
// its metadata, properties and reader access list.
type Repo struct {
	store  store
	prefix string
}

// New creates a resource repository with the given key prefix.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Put stores a resource with its reader access list. An empty readers
// slice means nobody can read it until the list is updated.
func (r *Repo) Put(ctx context.Context, res *domain.Resource, readers []string) error {
	if err := r.store.HSet(ctx, r.prefix+res.ID, buildHashFields(res, readers)); err != nil {
		return fmt.Errorf("put resource %s: %w", res.ID, err)
	}
	return nil
}

// Resolve returns the resource for an ID, or domain.ErrResourceNotFound
// when it no longer exists.
func (r *Repo) Resolve(ctx context.Context, id string) (*domain.Resource, error) {
	raw, err := r.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return parseHashFields(id, raw), nil
}

// CanRead reports whether the principal may read the resource. Unknown
// resources are not readable rather than an error: the read path treats
// them as vanished.
func (r *Repo) CanRead(ctx context.Context, principal, id string) (bool, error) {
	raw, err := r.fetch(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}
	for _, p := range strings.Fields(raw[fieldReaders]) {
		if p == AnyPrincipal || p == principal {
			return true, nil
		}
	}
	return false, nil
}

// Remove deletes a resource.
func (r *Repo) Remove(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.prefix+id); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrResourceNotFound, id)
		}
		return fmt.Errorf("remove resource %s: %w", id, err)
	}
	return nil
}

func (r *Repo) fetch(ctx context.Context, id string) (map[string]string, error) {
	raw, err := r.store.HGetAll(ctx, r.prefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, id)
		}
		return nil, fmt.Errorf("resolve resource %s: %w", id, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, id)
	}
	return raw, nil
}

// Package extract defines the boundary to the content extraction
// pipeline: a registry mapping resource-type tags to document
// factories, populated explicitly at startup.
package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/fields"
)

// Factory extracts indexable text from one kind of resource.
// Extraction failures must wrap domain.ErrExtraction; the write path
// skips the resource and carries on with the batch.
type Factory interface {
	Extract(ctx context.Context, res *domain.Resource) (*fields.ExtractionResult, error)
}

// Registry maps resource-type tags to factories. It is filled during
// startup and read-only afterwards; no runtime type dispatch.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to a resource-type tag, replacing any
// previous binding for the same tag.
func (r *Registry) Register(resourceType string, f Factory) {
	r.factories[resourceType] = f
}

// Lookup returns the factory for a resource type.
func (r *Registry) Lookup(resourceType string) (Factory, error) {
	f, ok := r.factories[resourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownResourceType, resourceType)
	}
	return f, nil
}

// Types returns the registered resource-type tags, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

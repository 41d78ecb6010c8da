package indexer

import (
	"context"

	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/extract"
	"github.com/cairnforge/vfsearch/internal/fields"
)

// Factories resolves a resource type to its document factory.
type Factories interface {
	Lookup(resourceType string) (extract.Factory, error)
}

// Builder turns an extraction result into an index document.
type Builder interface {
	BuildDocument(
		res *domain.Resource, ex *fields.ExtractionResult, defaults []language.Tag,
	) *domain.Document
}

// Writer is the buffered index writer contract.
type Writer interface {
	Update(path string, doc *domain.Document) error
	Delete(pathPrefix string) error
	Commit(ctx context.Context) error
}

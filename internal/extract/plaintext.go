package extract

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/fields"
)

var errNotText = errors.New("content is not valid UTF-8 text")

// Plaintext extracts resources whose stored content is already text.
// It is the default factory wired for the "plain" resource type.
type Plaintext struct{}

// Extract returns the resource content as unlocalized text.
func (Plaintext) Extract(_ context.Context, res *domain.Resource) (*fields.ExtractionResult, error) {
	if !utf8.Valid(res.Content) {
		return nil, domain.NewExtractionError(res.RootPath, errNotText)
	}
	return &fields.ExtractionResult{Content: string(res.Content)}, nil
}

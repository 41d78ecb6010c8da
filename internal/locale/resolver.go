// Package locale determines the authoritative language of a content
// item from its file name, its extracted text, or a configured default.
package locale

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/domain"
)

// suffixPattern matches a trailing locale suffix on a file name:
// "_xx" or "_xx_YY", optionally followed by one final extension
// segment. "rabbit_en.tar.gz" does not match (two extension segments).
var suffixPattern = regexp.MustCompile(`_([a-z]{2}(?:_[A-Z]{2})?)(?:\.[^.]*)?$`)

// Suffix returns the locale suffix of a resource name, if present.
//
//	rabbit_en_US.html -> "en_US"
//	rabbit_en         -> "en"
//	rabbit_enr        -> ""
func Suffix(name string) (string, bool) {
	m := suffixPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FromFileName parses the locale suffix of the last path segment.
func FromFileName(path string) (language.Tag, bool) {
	name := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	suffix, ok := Suffix(name)
	if !ok {
		return language.Und, false
	}
	tag, err := Parse(suffix)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// Parse accepts both underscore ("en_US") and BCP 47 ("en-US") forms.
func Parse(s string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", domain.ErrUnknownLocale, s)
	}
	return tag, nil
}

// Underscore renders a tag in the underscore form used for field names
// and stored locale lists ("en", "en_US").
func Underscore(t language.Tag) string {
	return strings.ReplaceAll(t.String(), "-", "_")
}

// Resolver resolves content locales against a fixed set of available
// locales. It is constructed once at startup; no ambient state.
type Resolver struct {
	available map[string]language.Tag
}

// NewResolver creates a resolver for the given available locales.
func NewResolver(available []language.Tag) *Resolver {
	m := make(map[string]language.Tag, len(available))
	for _, t := range available {
		m[Underscore(t)] = t
	}
	return &Resolver{available: m}
}

// Available reports whether a locale is among the configured set.
func (r *Resolver) Available(t language.Tag) bool {
	_, ok := r.available[Underscore(t)]
	return ok
}

// Resolve determines the locale of a resource, in strict priority order:
// file name suffix, then statistical detection on the extracted text
// (accepted only for available locales), then the first default.
// Detection failures degrade silently to the default.
func (r *Resolver) Resolve(resourcePath, extractedText string, defaults []language.Tag) language.Tag {
	if tag, ok := FromFileName(resourcePath); ok {
		return tag
	}

	if extractedText != "" {
		if tag, ok := r.detect(extractedText); ok {
			return tag
		}
	}

	if len(defaults) > 0 {
		return defaults[0]
	}
	return language.Und
}

func (r *Resolver) detect(text string) (language.Tag, bool) {
	info := whatlanggo.Detect(text)
	iso := info.Lang.Iso6391()
	if iso == "" {
		return language.Und, false
	}
	tag, err := Parse(iso)
	if err != nil {
		return language.Und, false
	}
	if !r.Available(tag) {
		return language.Und, false
	}
	return tag, true
}

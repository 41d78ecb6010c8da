// Package fields converts an extraction result plus stored properties
// into the flat field set of an index document, driven by a field
// configuration built once at startup.
package fields

import (
	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/locale"
)

// Stored field names shared by the write and read paths.
const (
	FieldID              = "id"
	FieldPath            = "path"
	FieldType            = "type"
	FieldContent         = "content"
	FieldTitle           = "title"
	FieldDateCreated     = "created"
	FieldDateModified    = "modified"
	FieldResourceLocales = "res_locales"
	FieldContentLocales  = "con_locales"
	FieldBoost           = "__boost"

	// DynamicPropertySuffix marks per-property dynamic fields.
	DynamicPropertySuffix = "_prop"
)

// ContentFieldName returns the locale-qualified content field name,
// e.g. "content_en" or "content_en_US".
func ContentFieldName(t language.Tag) string {
	return FieldContent + "_" + locale.Underscore(t)
}

// MappingType enumerates the supported field mapping sources.
type MappingType string

// Supported mapping types.
const (
	// MappingContent maps the extracted (possibly localized) content text.
	MappingContent MappingType = "content"
	// MappingProperty maps a stored resource property by name.
	MappingProperty MappingType = "property"
	// MappingItem maps a named item of the extraction result.
	MappingItem MappingType = "item"
	// MappingAttribute maps a structural resource attribute (path, type, name).
	MappingAttribute MappingType = "attribute"
)

// Mapping is one source of text for a field. Default is used when the
// mapping itself yields nothing.
type Mapping struct {
	Type    MappingType
	Param   string
	Default string
}

// Definition is a configured index field. A non-Und Locale marks a
// locale-qualified content field. Default is used when every mapping
// of the field yields nothing. Weight is the TEXT weight in the FT
// schema, not the document boost.
type Definition struct {
	Name     string
	Locale   language.Tag
	Mappings []Mapping
	Default  string
	Weight   float64
}

// ExtractionResult is the boundary object produced by the extraction
// pipeline. LocaleContent is keyed by underscore locale form.
// Multilocale marks resource types that are intrinsically multi-locale
// containers: those must supply per-locale content directly and never
// fall back to the unlocalized content.
type ExtractionResult struct {
	Content       string
	LocaleContent map[string]string
	Items         map[string]string
	MappingFields []Definition
	Multilocale   bool
	Locales       []language.Tag
}

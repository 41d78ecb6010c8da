package fields

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/locale"
)

// Mapper builds index documents from extraction results.
type Mapper struct {
	cfg      *Configuration
	resolver *locale.Resolver
	log      *zap.Logger
}

// NewMapper creates a mapper for the given configuration.
func NewMapper(cfg *Configuration, resolver *locale.Resolver, log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{cfg: cfg, resolver: resolver, log: log}
}

// BuildDocument evaluates every configured field definition plus the
// per-document mapping fields of the extraction result, in declaration
// order. Fields that yield empty text are omitted, not stored empty.
func (m *Mapper) BuildDocument(
	res *domain.Resource, ex *ExtractionResult, defaults []language.Tag,
) *domain.Document {
	if ex == nil {
		ex = &ExtractionResult{}
	}

	resourceLocales, contentLocales := m.resolveLocales(res, ex, defaults)
	var contentLocale language.Tag
	if len(contentLocales) > 0 {
		contentLocale = contentLocales[0]
	}

	doc := &domain.Document{
		ID:              res.ID,
		RootPath:        res.RootPath,
		Type:            res.Type,
		ResourceLocales: underscoreAll(resourceLocales),
		ContentLocales:  underscoreAll(contentLocales),
		Fields:          make(map[string]string),
		DateCreated:     res.DateCreated,
		DateModified:    res.DateModified,
		Boost:           domain.BoostForPriority(res.Properties[domain.PriorityProperty]),
	}

	for i := range ex.MappingFields {
		m.appendField(doc, &ex.MappingFields[i], res, ex, contentLocale)
	}
	for i := range m.cfg.defs {
		m.appendField(doc, &m.cfg.defs[i], res, ex, contentLocale)
	}

	m.appendProperties(doc, res)

	return doc
}

// resolveLocales splits into the multi-locale container case (locales
// supplied by the extraction itself) and the plain resource case
// (resolver precedence: suffix, detection, default).
func (m *Mapper) resolveLocales(
	res *domain.Resource, ex *ExtractionResult, defaults []language.Tag,
) (resourceLocales, contentLocales []language.Tag) {
	if ex.Multilocale && len(ex.Locales) > 0 {
		return ex.Locales, ex.Locales
	}
	resourceLocales = defaults
	resolved := m.resolver.Resolve(res.RootPath, ex.Content, defaults)
	if resolved != language.Und {
		contentLocales = []language.Tag{resolved}
	}
	return resourceLocales, contentLocales
}

func (m *Mapper) appendField(
	doc *domain.Document, def *Definition,
	res *domain.Resource, ex *ExtractionResult, contentLocale language.Tag,
) {
	var parts []string
	for _, mapping := range def.Mappings {
		val := m.mapValue(def, mapping, res, ex, contentLocale)
		if val == "" {
			val = mapping.Default
		}
		if val != "" {
			parts = append(parts, val)
		}
	}

	text := strings.Join(parts, "\n")
	if text == "" {
		text = def.Default
	}
	if text == "" {
		return // empty fields are omitted
	}
	doc.Fields[def.Name] = text
}

func (m *Mapper) mapValue(
	def *Definition, mapping Mapping,
	res *domain.Resource, ex *ExtractionResult, contentLocale language.Tag,
) string {
	switch mapping.Type {
	case MappingContent:
		if def.Locale != language.Und {
			return m.localizedContent(def, ex, contentLocale)
		}
		return ex.Content
	case MappingProperty:
		return res.Properties[mapping.Param]
	case MappingItem:
		return ex.Items[mapping.Param]
	case MappingAttribute:
		switch mapping.Param {
		case "path":
			return res.RootPath
		case "type":
			return res.Type
		case "name":
			return res.Name()
		}
	}
	m.log.Warn("unmappable field source",
		zap.String("field", def.Name),
		zap.String("mapping", string(mapping.Type)),
		zap.String("path", res.RootPath),
	)
	return ""
}

// localizedContent returns the directly extracted localized text for
// the field's locale. If none exists and the resource is not a
// multi-locale container, the single unlocalized content stands in,
// but only when the field's locale is the resolved content locale.
func (m *Mapper) localizedContent(
	def *Definition, ex *ExtractionResult, contentLocale language.Tag,
) string {
	if ex.LocaleContent != nil {
		if text := ex.LocaleContent[locale.Underscore(def.Locale)]; text != "" {
			return text
		}
	}
	if ex.Multilocale {
		return ""
	}
	if def.Locale == contentLocale {
		return ex.Content
	}
	return ""
}

func (m *Mapper) appendProperties(doc *domain.Document, res *domain.Resource) {
	for name, value := range res.Properties {
		if strings.TrimSpace(value) == "" {
			continue
		}
		doc.Fields[name+DynamicPropertySuffix] = value
	}
}

func underscoreAll(tags []language.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = locale.Underscore(t)
	}
	return out
}

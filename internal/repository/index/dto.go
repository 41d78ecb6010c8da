package index

import (
	"strconv"
	"strings"
	"time"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/fields"
)

// buildHashFields converts a domain Document into a flat
// map[string]string for HSET. Mapped fields are stored as-is; the
// structural fields and the boost get reserved names.
func buildHashFields(doc *domain.Document) map[string]string {
	m := make(map[string]string, 8+len(doc.Fields))
	for k, v := range doc.Fields {
		m[k] = v
	}
	m[fields.FieldID] = doc.ID
	m[fields.FieldPath] = doc.RootPath
	m[fields.FieldType] = doc.Type
	if len(doc.ResourceLocales) > 0 {
		m[fields.FieldResourceLocales] = strings.Join(doc.ResourceLocales, " ")
	}
	if len(doc.ContentLocales) > 0 {
		m[fields.FieldContentLocales] = strings.Join(doc.ContentLocales, " ")
	}
	if !doc.DateCreated.IsZero() {
		m[fields.FieldDateCreated] = formatDate(doc.DateCreated)
	}
	if !doc.DateModified.IsZero() {
		m[fields.FieldDateModified] = formatDate(doc.DateModified)
	}
	boost := doc.Boost
	if boost <= 0 {
		boost = domain.BoostDefault
	}
	m[fields.FieldBoost] = strconv.FormatFloat(boost, 'f', -1, 64)
	return m
}

func formatDate(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

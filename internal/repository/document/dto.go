package document

import (
	"strconv"
	"strings"
	"time"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/fields"
)

// parseHashFields decodes the flat HGETALL map back into a Document.
// Structural fields are lifted into the typed slots; everything else
// stays in Fields so mapped values round-trip unchanged.
func parseHashFields(raw map[string]string) *domain.Document {
	doc := &domain.Document{
		ID:       raw[fields.FieldID],
		RootPath: raw[fields.FieldPath],
		Type:     raw[fields.FieldType],
		Fields:   make(map[string]string, len(raw)),
		Boost:    domain.BoostDefault,
	}

	for k, v := range raw {
		switch k {
		case fields.FieldID, fields.FieldPath, fields.FieldType:
		case fields.FieldResourceLocales:
			doc.ResourceLocales = strings.Fields(v)
		case fields.FieldContentLocales:
			doc.ContentLocales = strings.Fields(v)
		case fields.FieldDateCreated:
			doc.DateCreated = parseDate(v)
		case fields.FieldDateModified:
			doc.DateModified = parseDate(v)
		case fields.FieldBoost:
			if b, err := strconv.ParseFloat(v, 64); err == nil && b > 0 {
				doc.Boost = b
			}
		default:
			doc.Fields[k] = v
		}
	}
	return doc
}

func parseDate(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

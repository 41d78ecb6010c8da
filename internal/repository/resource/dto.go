package resource

import (
	"strconv"
	"strings"
	"time"

	"github.com/cairnforge/vfsearch/internal/domain"
)

// Hash field layout for stored resources. Properties use a "prop:"
// prefix so arbitrary names never collide with the structural fields.
const (
	fieldPath     = "path"
	fieldType     = "type"
	fieldCreated  = "created"
	fieldModified = "modified"
	fieldContent  = "content"
	fieldReaders  = "readers"

	propPrefix = "prop:"
)

func buildHashFields(res *domain.Resource, readers []string) map[string]string {
	m := map[string]string{
		fieldPath:    res.RootPath,
		fieldType:    res.Type,
		fieldReaders: strings.Join(readers, " "),
	}
	if !res.DateCreated.IsZero() {
		m[fieldCreated] = strconv.FormatInt(res.DateCreated.UnixMilli(), 10)
	}
	if !res.DateModified.IsZero() {
		m[fieldModified] = strconv.FormatInt(res.DateModified.UnixMilli(), 10)
	}
	if len(res.Content) > 0 {
		m[fieldContent] = string(res.Content)
	}
	for k, v := range res.Properties {
		m[propPrefix+k] = v
	}
	return m
}

func parseHashFields(id string, raw map[string]string) *domain.Resource {
	res := &domain.Resource{
		ID:       id,
		RootPath: raw[fieldPath],
		Type:     raw[fieldType],
	}
	if v, ok := raw[fieldCreated]; ok {
		res.DateCreated = parseDate(v)
	}
	if v, ok := raw[fieldModified]; ok {
		res.DateModified = parseDate(v)
	}
	if v, ok := raw[fieldContent]; ok {
		res.Content = []byte(v)
	}
	for k, v := range raw {
		if name, ok := strings.CutPrefix(k, propPrefix); ok {
			if res.Properties == nil {
				res.Properties = make(map[string]string)
			}
			res.Properties[name] = v
		}
	}
	return res
}

func parseDate(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

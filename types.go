package vfsearch

import (
	"context"
	"time"

	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/fields"
	"github.com/cairnforge/vfsearch/internal/locale"
)

// Resource is a stored content item handed to the write path.
type Resource struct {
	ID           string
	RootPath     string
	Type         string
	DateCreated  time.Time
	DateModified time.Time
	Properties   map[string]string
	Content      []byte
}

// Query is a search request. Rows below zero selects the default page
// size; zero asks for every hit.
type Query struct {
	Terms         string
	Filter        string
	Rows          int
	Start         int
	Sort          string
	IgnoreMaxRows bool
}

// Hit is one permission-checked result.
type Hit struct {
	ID     string
	Path   string
	Score  float64
	Fields map[string]string
}

// ResultPage is one served page. Start, End and Page describe the
// window actually served, which can differ from the requested window
// when every hit of the requested page was filtered out.
type ResultPage struct {
	Start           int
	End             int
	Page            int
	Rows            int
	RawHitCount     int64
	VisibleHitCount int64
	MaxScore        float64
	Items           []Hit
}

// Document is an indexed document as stored.
type Document struct {
	ID              string
	Path            string
	Type            string
	ResourceLocales []string
	ContentLocales  []string
	Fields          map[string]string
	DateCreated     time.Time
	DateModified    time.Time
	Boost           float64
}

// Report summarizes one committed write batch.
type Report struct {
	Indexed int
	Skipped int
	Deleted int
}

// ExtractionResult is the output of a document factory. LocaleContent
// and Locales use the underscore locale form ("en", "de_DE").
type ExtractionResult struct {
	Content       string
	LocaleContent map[string]string
	Items         map[string]string
	Multilocale   bool
	Locales       []string
}

// DocumentFactory extracts indexable text from one resource type.
type DocumentFactory interface {
	Extract(ctx context.Context, res *Resource) (*ExtractionResult, error)
}

// PermissionOracle decides whether a principal may read a resource.
type PermissionOracle interface {
	CanRead(ctx context.Context, principal, id string) (bool, error)
}

// FieldDefinition configures one index field. Locale uses the
// underscore form and marks a locale-qualified content field.
type FieldDefinition struct {
	Name     string
	Locale   string
	Default  string
	Weight   float64
	Mappings []Mapping
}

// Mapping is one text source for a field: "content", "property",
// "item" or "attribute".
type Mapping struct {
	Type    string
	Param   string
	Default string
}

func (r *Resource) toDomain() *domain.Resource {
	return &domain.Resource{
		ID:           r.ID,
		RootPath:     r.RootPath,
		Type:         r.Type,
		DateCreated:  r.DateCreated,
		DateModified: r.DateModified,
		Properties:   r.Properties,
		Content:      r.Content,
	}
}

func resourceFromDomain(res *domain.Resource) *Resource {
	return &Resource{
		ID:           res.ID,
		RootPath:     res.RootPath,
		Type:         res.Type,
		DateCreated:  res.DateCreated,
		DateModified: res.DateModified,
		Properties:   res.Properties,
		Content:      res.Content,
	}
}

func (q *Query) toDomain() *domain.Query {
	return &domain.Query{
		Terms:         q.Terms,
		Filter:        q.Filter,
		Rows:          q.Rows,
		Start:         q.Start,
		Sort:          q.Sort,
		IgnoreMaxRows: q.IgnoreMaxRows,
	}
}

func pageFromDomain(p *domain.ResultPage) *ResultPage {
	items := make([]Hit, len(p.Items))
	for i, h := range p.Items {
		items[i] = Hit{ID: h.ID, Path: h.Path, Score: h.Score, Fields: h.Fields}
	}
	return &ResultPage{
		Start:           p.Start,
		End:             p.End,
		Page:            p.Page,
		Rows:            p.Rows,
		RawHitCount:     p.RawHitCount,
		VisibleHitCount: p.VisibleHitCount,
		MaxScore:        p.MaxScore,
		Items:           items,
	}
}

func documentFromDomain(doc *domain.Document) *Document {
	return &Document{
		ID:              doc.ID,
		Path:            doc.RootPath,
		Type:            doc.Type,
		ResourceLocales: doc.ResourceLocales,
		ContentLocales:  doc.ContentLocales,
		Fields:          doc.Fields,
		DateCreated:     doc.DateCreated,
		DateModified:    doc.DateModified,
		Boost:           doc.Boost,
	}
}

func (d FieldDefinition) toInternal() (fields.Definition, error) {
	def := fields.Definition{
		Name:    d.Name,
		Default: d.Default,
		Weight:  d.Weight,
	}
	if d.Locale != "" {
		tag, err := locale.Parse(d.Locale)
		if err != nil {
			return fields.Definition{}, err
		}
		def.Locale = tag
	}
	for _, m := range d.Mappings {
		def.Mappings = append(def.Mappings, fields.Mapping{
			Type:    fields.MappingType(m.Type),
			Param:   m.Param,
			Default: m.Default,
		})
	}
	return def, nil
}

func (e *ExtractionResult) toInternal() (*fields.ExtractionResult, error) {
	out := &fields.ExtractionResult{
		Content:       e.Content,
		LocaleContent: e.LocaleContent,
		Items:         e.Items,
		Multilocale:   e.Multilocale,
	}
	for _, l := range e.Locales {
		tag, err := locale.Parse(l)
		if err != nil {
			return nil, err
		}
		out.Locales = append(out.Locales, tag)
	}
	return out, nil
}

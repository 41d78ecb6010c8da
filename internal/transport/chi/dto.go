package chi

import (
	"time"

	"github.com/cairnforge/vfsearch/internal/domain"
	healthuc "github.com/cairnforge/vfsearch/internal/usecase/health"
)

// errorResponse is the uniform error payload.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

type hitResponse struct {
	ID     string            `json:"id"`
	Path   string            `json:"path"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields,omitempty"`
}

type pageResponse struct {
	Start           int           `json:"start"`
	End             int           `json:"end"`
	Page            int           `json:"page"`
	Rows            int           `json:"rows"`
	RawHitCount     int64         `json:"raw_hit_count"`
	VisibleHitCount int64         `json:"visible_hit_count"`
	MaxScore        float64       `json:"max_score"`
	Items           []hitResponse `json:"items"`
}

type documentResponse struct {
	ID              string            `json:"id"`
	Path            string            `json:"path"`
	Type            string            `json:"type"`
	ResourceLocales []string          `json:"resource_locales,omitempty"`
	ContentLocales  []string          `json:"content_locales,omitempty"`
	Fields          map[string]string `json:"fields,omitempty"`
	DateCreated     *time.Time        `json:"date_created,omitempty"`
	DateModified    *time.Time        `json:"date_modified,omitempty"`
	Boost           float64           `json:"boost"`
}

func pageToResponse(p *domain.ResultPage) pageResponse {
	items := make([]hitResponse, len(p.Items))
	for i, h := range p.Items {
		items[i] = hitResponse{
			ID:     h.ID,
			Path:   h.Path,
			Score:  h.Score,
			Fields: h.Fields,
		}
	}
	return pageResponse{
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

func documentToResponse(doc *domain.Document) documentResponse {
	resp := documentResponse{
		ID:              doc.ID,
		Path:            doc.RootPath,
		Type:            doc.Type,
		ResourceLocales: doc.ResourceLocales,
		ContentLocales:  doc.ContentLocales,
		Fields:          doc.Fields,
		Boost:           doc.Boost,
	}
	if !doc.DateCreated.IsZero() {
		t := doc.DateCreated
		resp.DateCreated = &t
	}
	if !doc.DateModified.IsZero() {
		t := doc.DateModified
		resp.DateModified = &t
	}
	return resp
}

// Package chi exposes the search service over HTTP. Handlers are
// hand-written against the chi router; query parameters are bound with
// the oapi-codegen runtime helpers.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cairnforge/vfsearch/internal/domain"
	healthuc "github.com/cairnforge/vfsearch/internal/usecase/health"
	searchuc "github.com/cairnforge/vfsearch/internal/usecase/search"
)

// PrincipalHeader carries the principal the permission filter runs as.
const PrincipalHeader = "X-Principal"

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeDocumentNotFound = "document_not_found"
	codeSearchFailed     = "search_failed"
	codeInternalError    = "internal_error"
)

// DocumentReader looks up single index documents by field value.
type DocumentReader interface {
	GetByField(ctx context.Context, field, value string) (*domain.Document, error)
}

// Server wires the usecases into HTTP handlers.
type Server struct {
	search    *searchuc.Service
	documents DocumentReader
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	documents DocumentReader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:    search,
		documents: documents,
		health:    health,
		logger:    logger,
	}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/v1/search", s.SearchResources)
	r.Get("/v1/documents", s.GetDocument)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// searchParams are the bound query parameters of GET /v1/search.
type searchParams struct {
	Query         string
	Filter        *string
	Rows          *int
	Start         *int
	Sort          *string
	IgnoreMaxRows *bool
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "q", q, &p.Query); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "filter", q, &p.Filter); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "rows", q, &p.Rows); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "start", q, &p.Start); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort", q, &p.Sort); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "ignore_max_rows", q, &p.IgnoreMaxRows); err != nil {
		return p, err
	}
	return p, nil
}

// SearchResources handles GET /v1/search.
func (s *Server) SearchResources(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	query := &domain.Query{
		Terms: params.Query,
		Rows:  -1,
	}
	if params.Filter != nil {
		query.Filter = *params.Filter
	}
	if params.Rows != nil {
		if *params.Rows < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "rows must not be negative")
			return
		}
		query.Rows = *params.Rows
	}
	if params.Start != nil {
		if *params.Start < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "start must not be negative")
			return
		}
		query.Start = *params.Start
	}
	if params.Sort != nil {
		query.Sort = *params.Sort
	}
	if params.IgnoreMaxRows != nil {
		query.IgnoreMaxRows = *params.IgnoreMaxRows
	}

	principal := r.Header.Get(PrincipalHeader)

	page, err := s.search.Search(r.Context(), principal, query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// GetDocument handles GET /v1/documents. Exactly one of the lookup
// parameters (path, id) selects the document.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var path, id *string
	if err := runtime.BindQueryParameter("form", true, false, "path", q, &path); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid query parameters: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "id", q, &id); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	var field, value string
	switch {
	case path != nil && id == nil:
		field, value = "path", *path
	case id != nil && path == nil:
		field, value = "id", *id
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest, "exactly one of path or id is required")
		return
	}

	doc, err := s.documents.GetByField(r.Context(), field, value)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrResourceNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))

	if errors.Is(err, domain.ErrDocumentNotFound) {
		writeError(w, http.StatusNotFound, codeDocumentNotFound, safeDomainMessage(err))
		return
	}

	var se *domain.SearchError
	if errors.As(err, &se) {
		s.logger.Error("search failed", zap.String("query", se.Query), zap.Error(se.Err))
		writeError(w, http.StatusBadGateway, codeSearchFailed, "search failed")
		return
	}

	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

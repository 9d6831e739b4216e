package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"recordgate/internal/platform/metrics"
	"recordgate/internal/platform/middleware"
	"recordgate/internal/records/models"
	"recordgate/pkg/platform/httputil"
	"recordgate/pkg/requestcontext"
)

// DefaultMaxResults applies when a request leaves max_results or count unset.
const DefaultMaxResults = 100

// Service defines the record operations exposed over HTTP.
type Service interface {
	Retrieve(ctx context.Context, ids []models.RecordIdentifier, descriptor models.QueryDescriptor, diags *models.Diagnostics) models.RetrievalOutcome
	Query(ctx context.Context, descriptor models.QueryDescriptor, diags *models.Diagnostics) models.RetrievalOutcome
	Continue(ctx context.Context, queryID uuid.UUID, start, count int, diags *models.Diagnostics) models.RetrievalOutcome
	Register(ctx context.Context, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) *models.RecordIdentifier
	Update(ctx context.Context, record *models.Record, mode models.PersistenceMode, diags *models.Diagnostics) *models.RecordIdentifier
}

// Handler handles the record endpoints.
type Handler struct {
	logger       *slog.Logger
	records      Service
	metrics      *metrics.Metrics
	timeout      time.Duration
	jwtValidator middleware.JWTValidator
}

// New creates a records Handler. timeout bounds each request and should
// exceed the batch retrieval timeout.
func New(
	records Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	timeout time.Duration) *Handler {
	return &Handler{
		logger:       logger,
		records:      records,
		metrics:      metrics,
		timeout:      timeout,
		jwtValidator: jwtValidator,
	}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	recordsRouter := chi.NewRouter()
	recordsRouter.Use(middleware.Recovery(h.logger))
	recordsRouter.Use(middleware.RequestID)
	recordsRouter.Use(middleware.RequestTime)
	recordsRouter.Use(middleware.Logger(h.logger))
	recordsRouter.Use(middleware.Timeout(h.timeout))
	recordsRouter.Use(middleware.ContentTypeJSON)
	recordsRouter.Use(middleware.LatencyMiddleware(h.metrics))
	recordsRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	recordsRouter.Post("/", h.handleRegister)
	recordsRouter.Put("/", h.handleUpdate)
	recordsRouter.Post("/retrieve", h.handleRetrieve)
	recordsRouter.Post("/query", h.handleQuery)
	recordsRouter.Get("/query/{queryID}", h.handleContinue)

	r.Mount("/records", recordsRouter)
}

type writeRequest struct {
	Record *models.Record          `json:"record"`
	Mode   models.PersistenceMode `json:"mode,omitempty"`
}

type writeResponse struct {
	Identifier *models.RecordIdentifier `json:"identifier"`
	Issues     []models.DetectedIssue   `json:"issues"`
	Details    []models.ResultDetail    `json:"details"`
}

type retrieveRequest struct {
	Identifiers []models.RecordIdentifier `json:"identifiers"`
	Descriptor  models.QueryDescriptor    `json:"descriptor"`
}

type queryRequest struct {
	Descriptor models.QueryDescriptor `json:"descriptor"`
}

type retrievalResponse struct {
	Outcome models.RetrievalOutcome `json:"outcome"`
	Issues  []models.DetectedIssue  `json:"issues"`
	Details []models.ResultDetail   `json:"details"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	h.handleWrite(w, r, "register", h.records.Register)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	h.handleWrite(w, r, "update", h.records.Update)
}

func (h *Handler) handleWrite(w http.ResponseWriter, r *http.Request, operation string,
	persist func(context.Context, *models.Record, models.PersistenceMode, *models.Diagnostics) *models.RecordIdentifier) {
	ctx := r.Context()
	var req writeRequest
	if !h.decode(w, r, operation, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = models.ModeProduction
	}

	diags := models.NewDiagnostics()
	id := persist(ctx, req.Record, req.Mode, diags)
	if id == nil {
		h.logger.InfoContext(ctx, "record not persisted",
			"request_id", middleware.GetRequestID(ctx),
			"operation", operation,
			"details", len(diags.Details()),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, writeResponse{
		Identifier: id,
		Issues:     issuesOf(diags),
		Details:    detailsOf(diags),
	})
}

func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if !h.decode(w, r, "retrieve", &req) {
		return
	}
	ctx := r.Context()
	diags := models.NewDiagnostics()
	out := h.records.Retrieve(ctx, req.Identifiers, h.prepare(ctx, req.Descriptor), diags)
	writeOutcome(w, out, diags)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !h.decode(w, r, "query", &req) {
		return
	}
	ctx := r.Context()
	diags := models.NewDiagnostics()
	out := h.records.Query(ctx, h.prepare(ctx, req.Descriptor), diags)
	writeOutcome(w, out, diags)
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queryID, err := uuid.Parse(chi.URLParam(r, "queryID"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "invalid query id")
		return
	}
	start, err := queryInt(r, "start", 0)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "invalid start")
		return
	}
	count, err := queryInt(r, "count", DefaultMaxResults)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "invalid count")
		return
	}

	diags := models.NewDiagnostics()
	out := h.records.Continue(ctx, queryID, start, count, diags)
	writeOutcome(w, out, diags)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, operation string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid records request",
			"request_id", middleware.GetRequestID(ctx),
			"operation", operation,
			"error", err.Error(),
		)
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "invalid request body")
		return false
	}
	return true
}

// prepare fills the descriptor fields the caller may leave out. The token
// subject always wins over a client-supplied originator.
func (h *Handler) prepare(ctx context.Context, d models.QueryDescriptor) models.QueryDescriptor {
	if d.QueryID == uuid.Nil {
		d.QueryID = uuid.New()
	}
	if d.MaxResults <= 0 {
		d.MaxResults = DefaultMaxResults
	}
	if originator := requestcontext.Originator(ctx); originator != "" {
		d.Originator = originator
	}
	return d
}

func writeOutcome(w http.ResponseWriter, out models.RetrievalOutcome, diags *models.Diagnostics) {
	httputil.WriteJSON(w, http.StatusOK, retrievalResponse{
		Outcome: out,
		Issues:  issuesOf(diags),
		Details: detailsOf(diags),
	})
}

func issuesOf(d *models.Diagnostics) []models.DetectedIssue {
	if issues := d.Issues(); issues != nil {
		return issues
	}
	return []models.DetectedIssue{}
}

func detailsOf(d *models.Diagnostics) []models.ResultDetail {
	if details := d.Details(); details != nil {
		return details
	}
	return []models.ResultDetail{}
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

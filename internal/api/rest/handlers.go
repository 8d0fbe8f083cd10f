package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/temporal"
	"github.com/clintrovert/firstissue/internal/temporal/workflows"
	"github.com/clintrovert/firstissue/pkg/types"
)

// MessageNoLanguages is returned when a request selects no languages
const MessageNoLanguages = "Please select at least one language."

// IssueFinder runs a synchronous curation
type IssueFinder interface {
	FindGoodFirstIssues(ctx context.Context, languages []string) []types.CuratedIssue
}

// CurationRunner starts and inspects durable curations
type CurationRunner interface {
	StartCuration(ctx context.Context, input workflows.CurationInput) (string, error)
	GetCuration(ctx context.Context, workflowID string) (*temporal.CurationStatus, error)
}

// Handler handles REST API requests
type Handler struct {
	finder    IssueFinder
	runner    CurationRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHandler creates a new REST handler. runner may be nil, in which case
// the curation endpoints answer 503.
func NewHandler(finder IssueFinder, runner CurationRunner, logger *zap.Logger) *Handler {
	return &Handler{
		finder:    finder,
		runner:    runner,
		validator: validator.New(),
		logger:    logger,
	}
}

// FindIssuesRequest selects the languages to search
type FindIssuesRequest struct {
	Languages []string `json:"languages" validate:"required,min=1,dive,required"`
}

// StartCurationRequest starts a durable curation
type StartCurationRequest struct {
	Languages  []string `json:"languages" validate:"required,min=1,dive,required"`
	MaxCurated int      `json:"max_curated" validate:"gte=0"`
	Workers    int      `json:"workers" validate:"gte=0,lte=64"`
}

// StartCurationResponse represents the response from starting a curation
type StartCurationResponse struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// FindIssues handles POST /find-issues
func (h *Handler) FindIssues(w http.ResponseWriter, r *http.Request) {
	var req FindIssuesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, MessageNoLanguages)
		return
	}

	issues := h.finder.FindGoodFirstIssues(r.Context(), req.Languages)
	if issues == nil {
		issues = []types.CuratedIssue{}
	}

	h.logger.Info("served find-issues",
		zap.Strings("languages", req.Languages),
		zap.Int("count", len(issues)),
	)

	writeJSON(w, http.StatusOK, issues)
}

// StartCuration handles POST /curations
func (h *Handler) StartCuration(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "durable curations are not configured")
		return
	}

	var req StartCurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && validationErrs[0].StructField() != "Languages" {
			writeError(w, http.StatusBadRequest, validationErrs[0].Error())
			return
		}
		writeError(w, http.StatusBadRequest, MessageNoLanguages)
		return
	}

	workflowID, err := h.runner.StartCuration(r.Context(), workflows.CurationInput{
		Languages:  req.Languages,
		MaxCurated: req.MaxCurated,
		Workers:    req.Workers,
	})
	if err != nil {
		h.logger.Error("failed to start curation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start curation")
		return
	}

	writeJSON(w, http.StatusAccepted, StartCurationResponse{
		WorkflowID: workflowID,
		Status:     "started",
	})
}

// GetCuration handles GET /curations/{id}
func (h *Handler) GetCuration(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "durable curations are not configured")
		return
	}

	workflowID := chi.URLParam(r, "id")

	status, err := h.runner.GetCuration(r.Context(), workflowID)
	if errors.Is(err, temporal.ErrCurationNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to get curation",
			zap.String("workflow_id", workflowID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to get curation")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// RegisterRoutes registers REST API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/find-issues", h.FindIssues)
	r.Post("/curations", h.StartCuration)
	r.Get("/curations/{id}", h.GetCuration)
}

// NewRouter mounts the API under /api/v1 next to /health. POST /find-issues
// is also served at the root, where existing form clients post.
func NewRouter(h *Handler) chi.Router {
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	router.Post("/find-issues", h.FindIssues)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

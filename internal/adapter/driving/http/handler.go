package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/oetdev/toolforge/internal/application"
	"github.com/oetdev/toolforge/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the pipeline REST API.
type Handler struct {
	repairSvc   *application.RepairService
	summarySvc  *application.CISummaryService
	feedbackSvc *application.FeedbackService
	buildsSvc   *application.BuildsService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	repairSvc *application.RepairService,
	summarySvc *application.CISummaryService,
	feedbackSvc *application.FeedbackService,
	buildsSvc *application.BuildsService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		repairSvc:   repairSvc,
		summarySvc:  summarySvc,
		feedbackSvc: feedbackSvc,
		buildsSvc:   buildsSvc,
		logger:      logger,
	}
}

// NewRouter creates the chi router with all routes registered and wrapped
// with CORS, logging, and recovery middleware.
func NewRouter(h *Handler, allowedOrigin string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/repair", h.RepairLint)
		r.Get("/prs/{number}/ci-summary", h.GetCISummary)
		r.Get("/prs/{number}/feedback", h.ListFeedback)
		r.Post("/feedback", h.PostFeedback)
		r.Get("/recent-builds", h.ListRecentBuilds)
		r.Get("/health", h.Health)
	})

	return r
}

// RepairLint runs a lint repair batch. The HTTP status only turns into an
// error when every file failed; partial failure is a success status with a
// qualifying message and null entries for the failed paths.
func (h *Handler) RepairLint(w http.ResponseWriter, r *http.Request) {
	var req RepairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.FilesToFix) == 0 {
		writeError(w, http.StatusBadRequest, "filesToFix must not be empty")
		return
	}
	for _, f := range req.FilesToFix {
		if f.Path == "" {
			writeError(w, http.StatusBadRequest, "every file needs a path")
			return
		}
	}
	if strings.TrimSpace(req.LintErrors) == "" {
		writeError(w, http.StatusBadRequest, "lintErrors must not be empty")
		return
	}

	files := make([]model.FileFixRequest, 0, len(req.FilesToFix))
	for _, f := range req.FilesToFix {
		files = append(files, model.FileFixRequest{Path: f.Path, CurrentContent: f.CurrentContent})
	}

	outcomes, status := h.repairSvc.Repair(r.Context(), files, req.LintErrors, req.ModelName)

	results := make(map[string]*string, len(outcomes))
	for path, outcome := range outcomes {
		if outcome.State == model.FixStateFailed {
			results[path] = nil
			continue
		}
		content := outcome.Content
		results[path] = &content
	}

	resp := RepairResponse{
		Results: results,
		Message: repairMessage(status, outcomes),
		Success: status != model.BatchAllFailed,
	}

	if status == model.BatchAllFailed {
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCISummary returns the aggregated CI picture for one PR.
func (h *Handler) GetCISummary(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid PR number")
		return
	}

	summary, err := h.summarySvc.Summarize(r.Context(), number)
	if err != nil {
		var upstream *model.UpstreamError
		if errors.As(err, &upstream) && upstream.NotFound {
			writeError(w, http.StatusNotFound, "pull request not found")
			return
		}
		h.logger.Error("ci summary failed", "pr", number, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toCISummaryResponse(summary))
}

// ListFeedback returns only the feedback-shaped comments on a PR.
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid PR number")
		return
	}

	feedback, err := h.feedbackSvc.ListFeedback(r.Context(), number)
	if err != nil {
		h.logger.Error("feedback list failed", "pr", number, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]FeedbackCommentResponse, 0, len(feedback))
	for _, c := range feedback {
		resp = append(resp, toFeedbackCommentResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// PostFeedback writes a new feedback comment on a PR.
func (h *Handler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	var req PostFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PRNumber <= 0 {
		writeError(w, http.StatusBadRequest, "prNumber is required")
		return
	}

	created, err := h.feedbackSvc.PostFeedback(r.Context(), req.PRNumber, req.Emoji, req.CommentText)
	if err != nil {
		var validation *model.ValidationError
		if errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, validation.Msg)
			return
		}
		h.logger.Error("feedback post failed", "pr", req.PRNumber, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toFeedbackCommentResponse(*created))
}

// ListRecentBuilds returns the recent-builds feed. The feed is non-blocking
// for its consumers: internal failures still answer 200 with an empty list
// and an error field instead of an error status.
func (h *Handler) ListRecentBuilds(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.buildsSvc.ListRecentBuilds(r.Context(), limit)
	if err != nil {
		h.logger.Error("recent builds failed", "error", err)
		writeJSON(w, http.StatusOK, RecentBuildsResponse{
			Builds: []RecentBuildResponse{},
			Error:  "could not resolve recent builds",
		})
		return
	}

	builds := make([]RecentBuildResponse, 0, len(entries))
	for _, entry := range entries {
		builds = append(builds, toRecentBuildResponse(entry))
	}

	writeJSON(w, http.StatusOK, RecentBuildsResponse{Builds: builds})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// repairMessage renders the human-readable batch summary line.
func repairMessage(status model.BatchStatus, outcomes map[string]model.FileFixOutcome) string {
	var failed int
	for _, o := range outcomes {
		if o.State == model.FixStateFailed {
			failed++
		}
	}

	switch status {
	case model.BatchAllFailed:
		return "lint repair failed for every file"
	case model.BatchPartialFailure:
		return fmt.Sprintf("lint repair completed with %d of %d file(s) failed", failed, len(outcomes))
	case model.BatchNoChangesProposed:
		return "no changes proposed"
	default:
		return "lint repair complete"
	}
}

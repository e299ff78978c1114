package alertqueue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// runner abstracts the Builder for handler tests.
type runner interface {
	Run(ctx context.Context) (*BuildReport, error)
}

// Router exposes the build trigger endpoints. POST /build is the
// scheduler's entry point; POST /rebuild is the manual recovery path with
// identical, idempotent semantics.
//
// Example:
//
//	builder, _ := alertqueue.NewBuilder(store, registry)
//	r := chi.NewRouter()
//	r.Mount("/queue", alertqueue.Router(builder, logger))
func Router(builder runner, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	h := &buildHandler{builder: builder, logger: logger}

	r := chi.NewRouter()
	r.Post("/build", h.handle)
	r.Post("/rebuild", h.handle)
	return r
}

type buildHandler struct {
	builder runner
	logger  *slog.Logger
}

type buildSuccess struct {
	Success     bool   `json:"success"`
	Queued      int64  `json:"queued"`
	Date        string `json:"date"`
	ExecutionMS int64  `json:"execution_ms"`
}

type buildEmpty struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type buildError struct {
	Error string `json:"error"`
}

func (h *buildHandler) handle(w http.ResponseWriter, r *http.Request) {
	report, err := h.builder.Run(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if report.Considered == 0 {
		writeJSON(w, http.StatusOK, buildEmpty{
			Success: true,
			Message: "No alerts found today",
		})
		return
	}

	writeJSON(w, http.StatusOK, buildSuccess{
		Success:     true,
		Queued:      report.Queued,
		Date:        report.Date.Format(time.DateOnly),
		ExecutionMS: report.Elapsed.Milliseconds(),
	})
}

// writeError maps builder error categories onto the response contract.
// Anything uncategorized becomes a generic 500 so internal details never
// leak to the caller.
func (h *buildHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrRegistryUnavailable):
		writeJSON(w, http.StatusBadGateway, buildError{Error: "Failed to fetch alerts"})
	case errors.Is(err, ErrPartialInsert):
		writeJSON(w, http.StatusBadGateway, buildError{Error: "Failed to insert queue items"})
	case errors.Is(err, ErrCleanup):
		writeJSON(w, http.StatusBadGateway, buildError{Error: "Failed to clean up queue"})
	default:
		h.logger.ErrorContext(r.Context(), "unexpected queue build failure", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, buildError{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

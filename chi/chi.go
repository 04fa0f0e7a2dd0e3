// Package chi exposes the submitter over HTTP: an administrative API and an
// endpoint for change events from the content system.
package chi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/fwojciec/indexnow"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Service is the submitter surface the handler drives. *submit.Service
// implements it.
type Service interface {
	Status(ctx context.Context) (*indexnow.Status, error)
	Flush(ctx context.Context) (*indexnow.FlushResult, error)
	ForceFlush(ctx context.Context) (*indexnow.FlushResult, error)
	Clear(ctx context.Context) error
	VerifyKey(ctx context.Context) (*indexnow.KeyCheck, error)
	Config(ctx context.Context) (*indexnow.Config, error)
	UpdateSettings(ctx context.Context, patch indexnow.Settings) (*indexnow.Config, error)
	HandleChange(ctx context.Context, ev indexnow.ChangeEvent) (bool, error)
}

// Handler routes the HTTP API.
type Handler struct {
	router chi.Router
	svc    Service
	logger *slog.Logger
}

// NewHandler builds the router for svc.
func NewHandler(svc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/status", h.handleStatus)
	r.Post("/submit", h.handleSubmit)
	r.Post("/clear", h.handleClear)
	r.Post("/verify", h.handleVerify)
	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handlePutSettings)

	r.Group(func(r chi.Router) {
		r.Use(h.flushAfter)
		r.Post("/events", h.handleEvents)
	})

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return indexnow.Errorf(indexnow.EINVALID, "invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code   string `json:"code"`
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// statusCodes maps application error codes to HTTP statuses.
var statusCodes = map[string]int{
	indexnow.EINVALID:         http.StatusBadRequest,
	indexnow.ENOTFOUND:        http.StatusNotFound,
	indexnow.EDISABLED:        http.StatusConflict,
	indexnow.EMISSINGKEY:      http.StatusUnprocessableEntity,
	indexnow.EINVALIDENDPOINT: http.StatusUnprocessableEntity,
	indexnow.EINVALIDSITE:     http.StatusUnprocessableEntity,
	indexnow.ENOVALIDURLS:     http.StatusUnprocessableEntity,
	indexnow.ETRANSPORT:       http.StatusBadGateway,
	indexnow.EHTTP:            http.StatusBadGateway,
	indexnow.EKEYNOTREACHABLE: http.StatusBadGateway,
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := indexnow.ErrorCode(err)
	status, ok := statusCodes[code]
	if !ok {
		status = http.StatusInternalServerError
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
	}
	writeJSON(w, status, errorResponse{
		Code:   code,
		Error:  indexnow.ErrorMessage(err),
		Status: indexnow.ErrorStatus(err),
	})
}

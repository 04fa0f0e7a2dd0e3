package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// logRequests logs each request at debug level.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func(begin time.Time) {
			h.logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration", time.Since(begin),
			)
		}(time.Now())
		next.ServeHTTP(ww, r)
	})
}

// flushAfter runs one flush once the wrapped handler has answered, so change
// events are submitted at the end of the request that reported them. The
// flush outlives a disconnecting client.
func (h *Handler) flushAfter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		_ = http.NewResponseController(w).Flush()

		res, err := h.svc.Flush(context.WithoutCancel(r.Context()))
		if err != nil {
			h.logger.Error("flush after request", "err", err)
			return
		}
		h.logger.Debug("flush after request",
			"state", res.State,
			"urls", len(res.URLs),
		)
	})
}

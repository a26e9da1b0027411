// Package health serves the liveness probe.
package health

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-docstore/internal/http/middleware"
	"github.com/aanand-mishra/students-docstore/internal/storage"
	"github.com/aanand-mishra/students-docstore/internal/utils/response"
)

// Check handles GET /healthz: 200 when the store answers a ping, 503
// otherwise.
func Check(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := storage.Ping(r.Context()); err != nil {
			middleware.Logger(r.Context()).Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}

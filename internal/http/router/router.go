// Package router assembles the route table and wraps it with middleware.
package router

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/students-docstore/internal/config"
	"github.com/aanand-mishra/students-docstore/internal/http/handlers/health"
	"github.com/aanand-mishra/students-docstore/internal/http/handlers/student"
	"github.com/aanand-mishra/students-docstore/internal/http/middleware"
	"github.com/aanand-mishra/students-docstore/internal/metrics"
	"github.com/aanand-mishra/students-docstore/internal/storage"
)

// New returns the application's root handler.
//
// Route table:
//
//	GET    /students        → list all students
//	POST   /students        → create a new student
//	GET    /students/{id}   → get one student by id
//	PUT    /students/{id}   → update a student
//	DELETE /students/{id}   → delete a student
//	GET    /healthz         → store ping
//	GET    /metrics         → Prometheus metrics
func New(log *slog.Logger, store storage.Storage, m *metrics.Metrics, corsCfg config.CORS) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.Metrics(m, pattern, h))
	}

	handle("GET /students", student.GetList(store))
	handle("POST /students", student.New(store))
	handle("GET /students/{id}", student.GetByID(store))
	handle("PUT /students/{id}", student.Update(store))
	handle("DELETE /students/{id}", student.Delete(store))

	handle("GET /healthz", health.Check(store))
	mux.Handle("GET /metrics", m.Handler())

	// CORS sits outermost so preflight requests are answered before the
	// mux rejects OPTIONS with 405.
	return middleware.CORS(corsCfg, middleware.RequestLogger(log, mux))
}

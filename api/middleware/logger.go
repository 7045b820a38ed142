// Package middleware provides HTTP middleware for the hlatype API server.
package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger logs each request's method, path, status, and duration, tagged
// with the chi request ID when present.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		reqID := middleware.GetReqID(r.Context())
		log.Printf("%s %s %d %s %s", r.Method, r.URL.Path, ww.Status(), time.Since(start), reqID)
	})
}

package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"gadminbot/core"
)

// RecoveryMiddleware tags each request with a correlation ID and converts
// panics into a 500 instead of tearing down the connection.
type RecoveryMiddleware struct{}

func NewRecoveryMiddleware() *RecoveryMiddleware {
	return &RecoveryMiddleware{}
}

// HTTPMiddleware - wraps HTTP handlers
func (m *RecoveryMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := core.NewID("req")
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("❌ [%s] Panic while handling %s %s: %v\n%s",
					requestID, r.Method, r.URL.Path, rec, debug.Stack())
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		log.Printf("⚡ [%s] %s %s from %s", requestID, r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

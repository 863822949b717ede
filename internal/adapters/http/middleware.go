package httpadapter

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dvirpinch/noa-chatbot-web/internal/observability"
)

// withRequestID tags the request context so every log line of a turn can be
// correlated.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withLogging logs every request with its duration.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		observability.LoggerFromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds())
	})
}

// withCORS adds basic CORS headers to allow calls from a web front-end.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRecovery converts a panic into the neutral apologetic reply; the end
// user never sees a stack trace.
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.LoggerFromContext(r.Context()).Error("panic recovered",
					"path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, chatResponse{
					Success: false,
					Error:   "internal error",
					Response: &agentReply{
						Message: "Sorry, I'm having trouble thinking right now. Can you try again?",
					},
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

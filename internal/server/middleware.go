package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "backoffice/internal/log"
)

const requestIDHeader = "X-Request-ID"

// withRequestID tags every request with an ID, echoing a caller-supplied one
// when present, so log lines from one request can be correlated.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := applog.WithRequestID(r.Context(), id)
		started := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		applog.Debug(ctx, "request handled", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(started).String())
	})
}

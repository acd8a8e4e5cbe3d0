package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
)

// Recover turns a panicking handler into a 500 and reports the panic to
// Sentry. Without a configured DSN the report is dropped by the SDK.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())

				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Recover(rec)

				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

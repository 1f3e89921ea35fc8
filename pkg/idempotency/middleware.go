package idempotency

import (
	"log/slog"
	"net/http"
)

const HeaderKey = "Idempotency-Key"

// Middleware rejects a repeated Idempotency-Key with 409 so retried POSTs
// do not double-apply. Requests without the header pass through untouched.
func Middleware(log *slog.Logger, store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(HeaderKey)
			if clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := store.Key(r.Method+" "+r.URL.Path, clientKey)
			seen, err := store.Seen(r.Context(), key)
			if err != nil {
				log.Error("idempotency check failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				log.Info("duplicate request rejected", "key", key)
				http.Error(w, "duplicate request", http.StatusConflict)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"

	"github.com/goccy/go-json"
)

// NewMaxBodySizeHandler limits request bodies to limit bytes.
//
// A request that declares a larger Content-Length is rejected with 413
// before the next handler runs. Bodies of unknown length are wrapped in
// http.MaxBytesReader, so the JSON decoder in the handler fails once the
// limit is crossed. A non-positive limit disables the check.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeTooLarge(w)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooLarge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "request_too_large",
			"message": "request body too large",
		},
	})
}

package http

import (
	"net/http"
	"strings"
)

// API responses are JSON only, so the default Content-Security-Policy
// allows nothing. The Swagger UI pages are the one exception: they load
// inline scripts, styles, and data-URI images.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := "default-src 'none'"
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			csp = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
		}
		h.Set("Content-Security-Policy", csp)

		next.ServeHTTP(w, r)
	})
}

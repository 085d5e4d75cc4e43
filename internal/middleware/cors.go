package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS adds Access-Control headers for allowed origins and answers preflight
// requests. A "*" entry allows every origin.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		// Browsers refuse credentials with a wildcard origin.
		AllowCredentials: !allowAll,
	}
	return cors.New(opts).Handler(next)
}

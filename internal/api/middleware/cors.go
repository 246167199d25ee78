package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// exposedHeaders are read by the browser client after a translate or download
var exposedHeaders = []string{
	"Content-Disposition",
	"Content-Length",
	"Retry-After",
	"X-Degraded-Blocks",
}

// CORS builds the go-chi/cors middleware for the configured origins. An empty
// list or a "*" entry allows any origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	allowCreds := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCreds = false
			break
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCreds,
		MaxAge:           300,
	})
}

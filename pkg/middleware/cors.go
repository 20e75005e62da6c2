package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/shashiranjanraj/krishi/config"
)

// CORS allows the configured origins (CORS_ALLOWED_ORIGINS, comma separated,
// "*" by default) to call the API with a bearer token.
func CORS() func(http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(config.Get("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
	return c.Handler
}

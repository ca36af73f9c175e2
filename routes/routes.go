package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Edna112/viral-boast-smm-sub000/config"
	"github.com/Edna112/viral-boast-smm-sub000/middleware"
)

// InitRouter builds the full router: health check, CORS, rate limiting, and
// the user/admin API groups.
func InitRouter(cfg *config.Config) http.Handler {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "viral-boast-api",
		})
	})).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.MaxBodyMiddleware)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitMax, time.Duration(cfg.RateLimitWindow)*time.Second)
	api.Use(limiter.Middleware)

	registerUserRoutes(api)
	registerAdminRoutes(api)

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	return handlers.RecoveryHandler()(cors(r))
}

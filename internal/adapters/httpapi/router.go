package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures the cross-cutting middleware around the API routes.
type RouterOptions struct {
	// AuthMiddleware, when set, guards the /api/chingus routes.
	AuthMiddleware func(http.Handler) http.Handler

	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string

	// GlobalLimit applies to every route. AuthLimit additionally applies to /api/auth.
	// A zero limit disables that limiter.
	GlobalLimit RateLimit
	AuthLimit   RateLimit
}

// NewRouter constructs the API HTTP router with no token gate and no rate limits.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Infra endpoints stay outside the limiters and the token gate.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter("global", opts.GlobalLimit))

		r.Route("/api/chingus", func(r chi.Router) {
			if opts.AuthMiddleware != nil {
				r.Use(opts.AuthMiddleware)
			}
			r.Get("/", s.ListChingus)
			r.Get("/aggregate-by-country", s.AggregateByCountry)
		})

		r.Route("/api/auth", func(r chi.Router) {
			r.Use(rateLimiter("auth", opts.AuthLimit))
			r.Post("/google", s.GoogleSignIn)
			r.Post("/register", s.Register)
			r.Post("/login", s.Login)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})
	return r
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mbolis/waterlily/app"
	"github.com/mbolis/waterlily/httpx"
	"github.com/mbolis/waterlily/log"
	"github.com/mbolis/waterlily/metrics"
	"github.com/mbolis/waterlily/routes/middlewares"
)

// Wire builds the HTTP router. authLimit throttles the /auth routes; nil
// disables throttling.
func Wire(app app.App, authLimit *middlewares.RateLimiter) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	if app.TrustProxy {
		root.Use(middleware.RealIP)
	}
	root.Use(
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
		middlewares.Metrics(app.Metrics),
		cors.Handler(cors.Options{
			AllowedOrigins: app.AllowedOrigins(),
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders: []string{"Retry-After"},
			MaxAge:         300,
		}),
	)
	root.NotFound(httpx.NotFound)
	root.MethodNotAllowed(httpx.MethodNotAllowed)

	root.Get("/", Greeting)
	root.Get("/health", Health(app))
	root.Method(http.MethodGet, "/metrics", metrics.Handler(app.Registry))

	root.Route("/auth", func(r chi.Router) {
		if authLimit != nil {
			r.Use(authLimit.Handler)
		}
		r.Post("/register", Register(app))
		r.Post("/login", Login(app))
	})

	root.Route("/surveys", func(r chi.Router) {
		r.Post("/", CreateSurvey(app))
		r.Get("/", ListSurveys(app))
		r.With(middlewares.RequireAuth(app.TokenAuth)).Post("/responses", SubmitResponse(app))
		r.Get("/{id}", GetSurveyById(app))
		r.Get("/{id}/responses", ListResponses(app))
	})

	return root
}

package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"styleshot/internal/http/handlers"
	"styleshot/internal/middleware"
)

// Options carries the router-level knobs from config.
type Options struct {
	Logger             zerolog.Logger
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	DefaultLocale      string
	CountryLookup      middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/metrics/summary", app.MetricsSummary)

	// Everything below identifies the calling installation.
	r.Group(func(r chi.Router) {
		r.Use(middleware.DeviceID)

		r.Get("/v1/styles", app.Styles)
		r.Get("/v1/quota", app.Quota)

		r.Route("/v1/onboarding", func(r chi.Router) {
			r.Get("/", app.OnboardingStatus)
			r.Post("/", app.OnboardingComplete)
		})

		r.Route("/v1/generations", func(r chi.Router) {
			r.Post("/", app.Generate)
			r.Post("/archive", app.Archive)
		})
	})

	return r
}

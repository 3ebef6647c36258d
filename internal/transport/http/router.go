package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gincana-service/internal/app"
	"gincana-service/internal/logging"
)

// Services bundles the use cases the HTTP adapter exposes.
type Services struct {
	Questions *app.QuestionService
	Teams     *app.TeamService
	Matches   *app.MatchService
	Backup    *app.BackupService
}

type RouterOptions struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// API holds the REST handlers. It only translates HTTP to service calls.
type API struct {
	svc    Services
	logger zerolog.Logger
}

// NewRouter wires REST routes, the projector websocket, health and metrics.
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	api := &API{svc: svc, logger: opts.Logger.With().Str("component", "http").Logger()}
	ws := NewWSHandler(svc.Matches, svc.Questions, opts.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(api.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// The websocket stream is long lived and must stay outside the request timeout.
	r.Get("/ws/matches/{id}", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", api.listQuestions)
			r.Post("/", api.addQuestion)
			r.Post("/import", api.importQuestions)
			r.Get("/{id}", api.getQuestion)
			r.Patch("/{id}", api.updateQuestion)
			r.Delete("/{id}", api.deleteQuestion)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", api.listTeams)
			r.Post("/", api.createTeam)
			r.Get("/{id}", api.getTeam)
			r.Patch("/{id}", api.updateTeam)
			r.Delete("/{id}", api.deleteTeam)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", api.listMatches)
			r.Post("/", api.createMatch)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.getMatch)
				r.Delete("/", api.deleteMatch)
				r.Get("/question", api.currentQuestion)
				r.Post("/draw", api.drawQuestion)
				r.Post("/answer", api.submitAnswer)
				r.Post("/skip", api.skip)
				r.Post("/end", api.endMatch)
				r.Get("/standings", api.standings)
				r.Get("/export", api.exportMatch)
			})
		})

		r.Get("/backup", api.backup)
		r.Post("/restore", api.restore)
	})

	return r
}

// requestLogger logs one line per request and puts the request logger into the context.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			reqLogger := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()

			defer func() {
				reqLogger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("http request")
			}()

			next.ServeHTTP(ww, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
		})
	}
}

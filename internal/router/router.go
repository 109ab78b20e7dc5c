package router

import (
	"net/http"

	"github.com/Totarae/linkgate/internal/auth"
	"github.com/Totarae/linkgate/internal/handlers"
	"github.com/Totarae/linkgate/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Options tune the router. The zero value serves without CORS and keys
// clients on the socket peer.
type Options struct {
	CORSOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy bool
}

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, authService *auth.Auth, opts Options, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(chimw.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}
	r.Use(middleware.GzipMiddleware) // Gzip-сжатие

	r.Get("/ping", handler.Ping)
	r.Get("/l/{code}", handler.Redirect)
	r.Post("/l/{code}", handler.Redirect)

	r.Route("/api", func(r chi.Router) {
		r.Use(authService.RequireOwner)

		r.Get("/stats", handler.UserSummary)
		r.Route("/links", func(r chi.Router) {
			r.Post("/", handler.CreateLink)
			r.Get("/", handler.ListLinks)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.GetLink)
				r.Patch("/", handler.EditLink)
				r.Delete("/", handler.DeleteLink)
				r.Post("/deactivate", handler.Deactivate)
				r.Post("/activate", handler.Activate)
				r.Get("/clicks", handler.ClicksOverTime)
			})
		})
	})
	return r
}

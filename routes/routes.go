package routes

import (
	"net/http"

	"github.com/Dosada05/tournament-bracket/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tournament-bracket/docs"
)

type Dependencies struct {
	SessionHandler   *handlers.SessionHandler
	WebSocketHandler *handlers.WebSocketHandler
	HealthHandler    *handlers.HealthHandler
	Metrics          http.Handler
	AllowedOrigins   []string
}

func SetupRoutes(router chi.Router, deps Dependencies) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", deps.HealthHandler.Healthz)
	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/sessions", func(r chi.Router) {
		r.Post("/", deps.SessionHandler.CreateSession)
		r.Get("/", deps.SessionHandler.ListSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", deps.SessionHandler.GetSession)
			r.Delete("/", deps.SessionHandler.DeleteSession)

			r.Post("/bracket", deps.SessionHandler.GenerateBracket)
			r.Delete("/bracket", deps.SessionHandler.ResetBracket)
			r.Get("/matchups", deps.SessionHandler.GetMatchups)
			r.Post("/advance", deps.SessionHandler.AdvanceBracket)
			r.Post("/revert", deps.SessionHandler.RevertBracket)
			r.Post("/complete", deps.SessionHandler.CompleteSession)
		})
	})

	router.Get("/ws/sessions/{sessionID}", deps.WebSocketHandler.ServeWs)
}

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialwave/internal/handler"
	authmw "socialwave/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	PostHandler   *handler.PostHandler
	HealthHandler *handler.HealthHandler
	JWTSecret     string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.HealthHandler.Health)

		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})

		// Current user
		r.With(authmw.Auth(cfg.JWTSecret)).Get("/me", cfg.AuthHandler.Me)

		// Public profile endpoints
		r.Route("/users", func(r chi.Router) {
			r.Get("/{username}", cfg.UserHandler.GetProfile)
			r.Get("/{username}/followers", cfg.UserHandler.ListFollowers)
			r.Get("/{username}/following", cfg.UserHandler.ListFollowing)

			r.With(authmw.Auth(cfg.JWTSecret)).Put("/{userID}/follow", cfg.UserHandler.ToggleFollow)
		})

		// Post endpoints
		r.Route("/posts", func(r chi.Router) {
			r.With(authmw.OptionalAuth(cfg.JWTSecret)).Get("/", cfg.PostHandler.Feed)
			r.With(authmw.OptionalAuth(cfg.JWTSecret)).Get("/user/{username}", cfg.PostHandler.ListByUser)

			r.Group(func(r chi.Router) {
				r.Use(authmw.Auth(cfg.JWTSecret))

				r.Post("/", cfg.PostHandler.Create)
				r.Delete("/{postID}", cfg.PostHandler.Delete)
				r.Put("/{postID}/like", cfg.PostHandler.ToggleLike)
				r.Post("/{postID}/comment", cfg.PostHandler.AddComment)
			})
		})
	})

	return r
}

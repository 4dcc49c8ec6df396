package httpapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// NewRouter assembles the chi.Router exposing every route in spec.md
// §6, grounded on DrisanJames-project-jarvis/internal/api/routes.go's
// middleware stack (logger/recoverer/real-ip/request-id/cors) and
// hackclub-news's per-route httprate.LimitByIP rate limiting.
func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Second))
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Get("/auth/activation/mail/{uuid}", h.ActivateAccount)
	})

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Second))
		r.Use(RequireAuth(h.auth))

		r.Post("/auth/activation/mail", h.RequestActivationMail)

		r.Get("/user/{id}", h.GetUser)
		r.Post("/user/update", h.UpdateUser)

		r.Get("/post/{pid}", h.GetPost)
		r.Post("/post", h.CreatePost)
		r.Post("/post/update", h.UpdatePost)

		r.Get("/topic", h.ListTopics)
		r.Get("/topic/{id}", h.GetTopic)
		r.Post("/topic", h.CreateTopic)
		r.Post("/topic/update", h.UpdateTopic)

		r.Get("/categories", h.ListCategories)

		r.Get("/psn", h.GetPSNProfile)
		r.Get("/psn/auth", h.PSNAuth)
		r.Get("/psn/community", h.PSNCommunity)

		r.Get("/talk", h.HandleTalkWS)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/category", h.AdminCreateCategory)
			r.Get("/category/remove/{cid}", h.AdminRemoveCategory)
			r.Post("/user", h.AdminCreateUser)
			r.Post("/topic", h.AdminCreateTopic)
			r.Post("/post", h.AdminCreatePost)
		})
	})

	return r
}

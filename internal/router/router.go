package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-users/internal/api/middlewares"
	"github.com/talx-hub/gopher-users/internal/model"
)

type CustomRouter struct {
	router *chi.Mux
	logger *slog.Logger
}

func New(log *slog.Logger) *CustomRouter {
	if log == nil {
		log = slog.Default()
	}
	router := &CustomRouter{
		router: chi.NewRouter(),
		logger: log,
	}

	return router
}

type UserHandler interface {
	GetUsers(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	VerifyPassword(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	UserHandler
	HealthHandler
}

func (cr *CustomRouter) SetRouter(h Handler) {
	cr.router.Use(middleware.RequestID)
	cr.router.Use(middlewares.Logging(cr.logger))
	cr.router.Use(middleware.Recoverer)

	cr.router.Route("/users", func(r chi.Router) {
		r.Get("/", h.GetUsers)
		r.With(middleware.AllowContentType(model.ContentTypeJSON)).
			Post("/", h.CreateUser)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Delete("/", h.DeleteUser)
			r.With(middleware.AllowContentType(model.ContentTypeJSON)).
				Post("/verify", h.VerifyPassword)
		})
	})
	cr.router.Get("/ping", h.Ping)

	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w,
			http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}

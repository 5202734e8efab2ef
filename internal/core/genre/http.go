package genre

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	requestutil "github.com/mangetsu-app/mangetsu/internal/platform/request"
	"github.com/mangetsu-app/mangetsu/internal/platform/respond"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listGenres)
	router.Get("/{id}", handler.getGenre)
	router.Get("/by-slug/{slug}", handler.getGenreBySlug)

	// Taxonomy management is an admin concern
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.createGenre)
		admin.Delete("/{id}", handler.deleteGenre)
	})

	return router
}

func (handler *Handler) listGenres(writer http.ResponseWriter, request *http.Request) {
	genres, err := handler.service.ListGenres(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, genres)
}

func (handler *Handler) getGenre(writer http.ResponseWriter, request *http.Request) {
	genreID := requestutil.ID(request, "id")

	genre, err := handler.service.GetGenre(request.Context(), genreID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, genre)
}

func (handler *Handler) getGenreBySlug(writer http.ResponseWriter, request *http.Request) {
	slug := chi.URLParam(request, "slug")

	genre, err := handler.service.GetGenreBySlug(request.Context(), slug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, genre)
}

type createGenreRequest struct {
	Name string `json:"name"`
}

func (handler *Handler) createGenre(writer http.ResponseWriter, request *http.Request) {
	var input createGenreRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	genre := &Genre{Name: input.Name}
	if err := handler.service.CreateGenre(request.Context(), genre); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, genre)
}

func (handler *Handler) deleteGenre(writer http.ResponseWriter, request *http.Request) {
	genreID := requestutil.ID(request, "id")

	if err := handler.service.DeleteGenre(request.Context(), genreID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package title provides the HTTP interface for the title catalogue.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /titles).
  - Restricted (v1): Mutative endpoints requiring an authenticated uploader,
    the record owner, or staff roles.
*/
package title

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mangetsu-app/mangetsu/internal/platform/ctxutil"
	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	requestutil "github.com/mangetsu-app/mangetsu/internal/platform/request"
	"github.com/mangetsu-app/mangetsu/internal/platform/respond"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/pkg/pagination"
	"github.com/mangetsu-app/mangetsu/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for title discovery and management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new title [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the title domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listTitles)
	router.Get("/{id}", handler.getTitle)

	// ## Content Management (Authenticated)
	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)

		authed.Post("/", handler.createTitle)
		authed.Patch("/{id}", handler.updateTitle)
		authed.Delete("/{id}", handler.deleteTitle)
	})

	// ## Counter Repair (Staff Protected)
	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleModerator))

		staff.Post("/{id}/reconcile-chapters", handler.reconcileChapterCount)
	})

	return router
}

// # Discovery Endpoints

/*
GET /api/v1/titles.

Description: Retrieves a paginated list of titles. Supports filtering by
status, genre, uploader and substring name search.

Request:
  - q: string (Substring name search)
  - status: string (ongoing, completed, hiatus, cancelled)
  - genre: string (Comma-separated genre UUIDs; matches titles carrying any)
  - uploader: string (Uploader UUID)
  - dir: string (asc, desc)
  - limit: int
  - page: int

Response:
  - 200: []Title: Paginated list of titles
*/
func (handler *Handler) listTitles(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:      queryParams.Get("q"),
		GenreIDs:   query.StringSlice(queryParams.Get("genre")),
		UploaderID: queryParams.Get("uploader"),
		SortDir:    queryParams.Get("dir"),
	}

	if status := Status(queryParams.Get("status")); status.IsValid() {
		filter.Status = status
	}

	titles, total, err := handler.service.ListTitles(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, titles, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/titles/{id}.

Description: Retrieves detailed metadata for a single title and bumps
the view counter. The counter bump is fire and forget.

Response:
  - 200: Title: Success
  - 404: 404: ErrNotFound: Title not found or deleted
*/
func (handler *Handler) getTitle(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "id")

	title, err := handler.service.GetTitle(request.Context(), titleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RegisterView(request.Context(), titleID); err != nil {
		ctxutil.GetLogger(request.Context()).Warn("title_view_count_failed", slog.String("title_id", titleID))
	}

	respond.OK(writer, title)
}

// # Request Payloads

// createTitleRequest defines the inbound JSON schema for title creation.
type createTitleRequest struct {
	Name     string   `json:"name"`
	Author   string   `json:"author"`
	Artist   string   `json:"artist"`
	Synopsis string   `json:"synopsis"`
	Status   Status   `json:"status"`
	CoverURL string   `json:"cover_url"`
	GenreIDs []string `json:"genre_ids"`
}

// updateTitleRequest defines the inbound JSON schema for partial updates.
// Absent fields stay untouched.
type updateTitleRequest struct {
	Name     *string  `json:"name"`
	Author   *string  `json:"author"`
	Artist   *string  `json:"artist"`
	Synopsis *string  `json:"synopsis"`
	Status   *Status  `json:"status"`
	CoverURL *string  `json:"cover_url"`
	GenreIDs []string `json:"genre_ids"`
}

// # Mutation Endpoints

/*
POST /api/v1/titles.

Description: Creates a new title owned by the authenticated caller.
Requires at least the uploader role.

Request (Body):
  - createTitleRequest: JSON object

Response:
  - 201: Title: Created title object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) createTitle(writer http.ResponseWriter, request *http.Request) {
	var input createTitleRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	titleDto := &Title{
		Name:     input.Name,
		Author:   input.Author,
		Artist:   input.Artist,
		Synopsis: input.Synopsis,
		Status:   input.Status,
		CoverURL: input.CoverURL,
		GenreIDs: input.GenreIDs,
	}

	if err := handler.service.CreateTitle(request.Context(), requestutil.Claims(request), titleDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, titleDto)
}

/*
PATCH /api/v1/titles/{id}.

Description: Applies a partial update. The caller must own the record
or hold at least moderator privileges.

Response:
  - 200: Title: Updated title object
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Caller is neither owner nor staff
  - 404: 404: ErrNotFound: Title not found
*/
func (handler *Handler) updateTitle(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "id")

	var input updateTitleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	update := UpdateInput{
		Name:     input.Name,
		Author:   input.Author,
		Artist:   input.Artist,
		Synopsis: input.Synopsis,
		Status:   input.Status,
		CoverURL: input.CoverURL,
		GenreIDs: input.GenreIDs,
	}

	if err := handler.service.UpdateTitle(request.Context(), requestutil.Claims(request), titleID, update); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.service.GetTitle(request.Context(), titleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, title)
}

/*
DELETE /api/v1/titles/{id}.

Description: Soft-deletes the title. The record disappears from all
reads but remains in storage. Chapters under it become unreachable.

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Caller is neither owner nor staff
  - 404: 404: ErrNotFound: Title not found
*/
func (handler *Handler) deleteTitle(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "id")

	if err := handler.service.DeleteTitle(request.Context(), requestutil.Claims(request), titleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Maintenance Endpoints

/*
POST /api/v1/titles/{id}/reconcile-chapters.

Description: Recomputes the denormalized chapter counter from the live
chapter rows. Safe to invoke repeatedly.

Response:
  - 200: {"chapter_count": n}: The recomputed value
  - 403: 403: ErrForbidden: Requires moderator or admin
  - 404: 404: ErrNotFound: Title not found
*/
func (handler *Handler) reconcileChapterCount(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "id")

	count, err := handler.service.ReconcileChapterCount(request.Context(), titleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"chapter_count": count})
}

// Copyright (c) 2026 Mangetsu. All rights reserved.

package chapter

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/ctxutil"
	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	requestutil "github.com/mangetsu-app/mangetsu/internal/platform/request"
	"github.com/mangetsu-app/mangetsu/internal/platform/respond"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/internal/upload"
	"github.com/mangetsu-app/mangetsu/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for reading and publishing chapters.
type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

// Routes returns the routes addressed by chapter ID.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Reading Endpoints
	router.Get("/{id}", handler.getChapter)

	// ## Content Management (Authenticated)
	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)

		authed.Patch("/{id}", handler.updateChapter)
		authed.Delete("/{id}", handler.deleteChapter)
	})

	return router
}

// TitleRoutes returns the routes nested under a parent title.
// Mount at /titles/{titleID}/chapters.
func (handler *Handler) TitleRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listChapters)

	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireRole(sec.RoleUploader))

		authed.Post("/", handler.createChapter)
	})

	return router
}

// # Reading Endpoints

/*
GET /api/v1/titles/{titleID}/chapters.

Description: Lists the live chapters of a title ordered by ordinal.
Chapters of a deleted title are not returned.

Request:
  - dir: string (asc, desc)
  - limit: int
  - page: int

Response:
  - 200: []Chapter: Paginated chapter metadata (no page bodies)
*/
func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	titleID := requestutil.ID(request, "titleID")
	paginationParams := pagination.FromRequest(request)

	filter := Filter{SortDir: request.URL.Query().Get("dir")}

	chapters, total, err := handler.service.ListChapters(request.Context(), titleID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/chapters/{id}.

Description: Retrieves a chapter with its ordered page list and bumps
the view counter. The counter bump is fire and forget.

Response:
  - 200: Chapter: Success
  - 404: 404: ErrNotFound: Chapter missing, deleted, or under a deleted title
*/
func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "id")

	chapter, err := handler.service.GetChapter(request.Context(), chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RegisterView(request.Context(), chapter); err != nil {
		ctxutil.GetLogger(request.Context()).Warn("chapter_view_count_failed", slog.String("chapter_id", chapterID))
	}

	respond.OK(writer, chapter)
}

// # Publication Endpoints

/*
POST /api/v1/titles/{titleID}/chapters.

Description: Publishes a new chapter. Accepts a multipart form: chapter
metadata as form values and page images as file parts in reading order.
An ordinal conflict is rejected before any page is uploaded.

Request (multipart/form-data):
  - ordinal: number (Unique among live siblings)
  - name: string
  - volume: int (optional)
  - pages: one or more image parts, in reading order

Response:
  - 201: Chapter: The published chapter with resolved page URLs
  - 400: 400: Validation: Bad metadata, unsupported or oversized pages
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Caller lacks the uploader role
  - 404: 404: ErrNotFound: Parent title missing or deleted
  - 409: 409: ErrConflict: Ordinal already used by a live sibling
*/
func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxBytes)

	if err := request.ParseMultipartForm(constants.MultipartMemoryLimit); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ordinal, err := strconv.ParseFloat(request.FormValue("ordinal"), 64)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid input", apperr.FieldError{Field: FieldOrdinal, Message: "ordinal must be a number"}))
		return
	}

	input := CreateInput{
		TitleID: requestutil.ID(request, "titleID"),
		Ordinal: ordinal,
		Name:    request.FormValue("name"),
	}

	if rawVolume := request.FormValue("volume"); rawVolume != "" {
		volume, err := strconv.Atoi(rawVolume)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Invalid input", apperr.FieldError{Field: FieldVolume, Message: "volume must be an integer"}))
			return
		}
		input.Volume = &volume
	}

	for _, header := range request.MultipartForm.File["pages"] {
		part, err := header.Open()
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		defer part.Close()

		input.Pages = append(input.Pages, upload.File{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      part,
		})
	}

	chapter, err := handler.service.CreateChapter(request.Context(), requestutil.Claims(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

// updateChapterRequest defines the inbound JSON schema for partial updates.
type updateChapterRequest struct {
	Name    *string  `json:"name"`
	Ordinal *float64 `json:"ordinal"`
	Volume  *int     `json:"volume"`
}

/*
PATCH /api/v1/chapters/{id}.

Description: Applies a partial update. The caller must own the chapter
or hold at least moderator privileges. An ordinal change is checked
against live siblings excluding this chapter.

Response:
  - 200: Chapter: Updated chapter
  - 403: 403: ErrForbidden: Caller is neither owner nor staff
  - 404: 404: ErrNotFound: Chapter not found
  - 409: 409: ErrConflict: New ordinal already used by a live sibling
*/
func (handler *Handler) updateChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "id")

	var input updateChapterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	update := UpdateInput{
		Name:    input.Name,
		Ordinal: input.Ordinal,
		Volume:  input.Volume,
	}

	if err := handler.service.UpdateChapter(request.Context(), requestutil.Claims(request), chapterID, update); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.GetChapter(request.Context(), chapterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

/*
DELETE /api/v1/chapters/{id}.

Description: Soft-deletes the chapter and repairs the parent's chapter
counter. The freed ordinal may be reused by a new sibling.

Response:
  - 204: No Content: Success
  - 403: 403: ErrForbidden: Caller is neither owner nor staff
  - 404: 404: ErrNotFound: Chapter not found
*/
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "id")

	if err := handler.service.DeleteChapter(request.Context(), requestutil.Claims(request), chapterID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

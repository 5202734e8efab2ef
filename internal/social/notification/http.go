// Copyright (c) 2026 Mangetsu. All rights reserved.

package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	requestutil "github.com/mangetsu-app/mangetsu/internal/platform/request"
	"github.com/mangetsu-app/mangetsu/internal/platform/respond"
	"github.com/mangetsu-app/mangetsu/pkg/convert"
	"github.com/mangetsu-app/mangetsu/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the notification feed.
type Handler struct {
	service *Service
}

// NewHandler constructs a new notification [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the feed endpoints. Everything is scoped to the
// authenticated user; there is no cross-user access.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listNotifications)
	router.Patch("/{id}/read", handler.markRead)
	router.Patch("/read-all", handler.markAllRead)

	return router
}

// # Feed Endpoints

/*
GET /api/v1/notifications.

Request:
  - unread: bool (Only unread entries)
  - limit: int
  - page: int

Response:
  - 200: []Notification: The caller's feed, newest first
  - 401: 401: ErrUnauthorized: Missing or invalid token
*/
func (handler *Handler) listNotifications(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	unreadOnly := convert.ToBool(request.URL.Query().Get("unread"))

	notifications, total, err := handler.service.ListNotifications(request.Context(), userID, unreadOnly, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, notifications, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
PATCH /api/v1/notifications/{id}/read.

Response:
  - 204: No Content: Success
  - 404: 404: ErrNotFound: Not the caller's notification, or absent
*/
func (handler *Handler) markRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.MarkRead(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PATCH /api/v1/notifications/read-all.

Response:
  - 204: No Content: Success
*/
func (handler *Handler) markAllRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.MarkAllRead(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

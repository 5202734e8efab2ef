// Copyright (c) 2026 Mangetsu. All rights reserved.

package visitor

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	requestutil "github.com/mangetsu-app/mangetsu/internal/platform/request"
	"github.com/mangetsu-app/mangetsu/internal/platform/respond"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/pkg/pagination"
)

// # Handler Implementation

// Handler implements the admin-only analytics endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new visitor [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the analytics endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/visitors", handler.listVisitors)
	router.Get("/summary", handler.summarize)

	return router
}

// # Dashboard Endpoints

/*
GET /api/v1/analytics/visitors.

Response:
  - 200: []Visitor: Recent visitors, most recently active first
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) listVisitors(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	visitors, total, err := handler.service.ListVisitors(request.Context(), requestutil.Claims(request), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, visitors, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/analytics/summary.

Response:
  - 200: Summary: Aggregate traffic counts grouped by device and browser
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) summarize(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.service.Summarize(request.Context(), requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}

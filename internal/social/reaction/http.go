// Copyright (c) 2026 Mangetsu. All rights reserved.

package reaction

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	requestutil "github.com/mangetsu-app/mangetsu/internal/platform/request"
	"github.com/mangetsu-app/mangetsu/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for reactions.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reaction [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the reaction endpoints, addressed by target.
// Mount at /reactions.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.Get("/{targetKind}/{targetID}", handler.getReaction)
	router.Post("/{targetKind}/{targetID}", handler.toggleReaction)

	return router
}

// # Reaction Endpoints

/*
GET /api/v1/reactions/{targetKind}/{targetID}.

Description: Returns the caller's current reaction and the target's
tallies without changing anything.

Response:
  - 200: {reaction: "like"|"dislike"|null, likes, dislikes}
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 404: 404: ErrNotFound: Target absent or deleted
*/
func (handler *Handler) getReaction(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.GetReaction(request.Context(),
		requestutil.Claims(request),
		TargetKind(chi.URLParam(request, "targetKind")),
		requestutil.ID(request, "targetID"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// toggleRequest defines the inbound JSON schema for a reaction submission.
type toggleRequest struct {
	Kind Kind `json:"kind"`
}

/*
POST /api/v1/reactions/{targetKind}/{targetID}.

Description: Submits a like or dislike with toggle semantics. Repeating
the held reaction clears it; submitting the opposite switches it.

Request (Body):
  - kind: string (like, dislike)

Response:
  - 200: {reaction: "like"|"dislike"|null, likes, dislikes}
  - 400: 400: Validation: Unknown kind or target kind
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 404: 404: ErrNotFound: Target absent or deleted
*/
func (handler *Handler) toggleReaction(writer http.ResponseWriter, request *http.Request) {
	var input toggleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Toggle(request.Context(),
		requestutil.Claims(request),
		TargetKind(chi.URLParam(request, "targetKind")),
		requestutil.ID(request, "targetID"),
		input.Kind,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

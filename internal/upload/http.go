// Copyright (c) 2026 Mangetsu. All rights reserved.

package upload

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	requestutil "github.com/mangetsu-app/mangetsu/internal/platform/request"
	"github.com/mangetsu-app/mangetsu/internal/platform/respond"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for asset ingestion.
type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHandler constructs a new upload [Handler].
func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

// Routes returns a [chi.Router] with the upload endpoints.
//
// All endpoints require at least the uploader role; anonymous and
// member callers never reach storage.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireRole(sec.RoleUploader))

	router.Post("/", handler.uploadBatch)
	router.Post("/presign", handler.presignUpload)

	return router
}

// # Upload Endpoints

/*
POST /api/v1/uploads.

Description: Accepts a multipart form with one or more files under the
"files" field and stores them sequentially. The first failing file
aborts the remainder of the batch.

Request (multipart/form-data):
  - folder: string (covers, pages, avatars; defaults to covers)
  - files: one or more binary parts

Response:
  - 200: {"uploads": [{originalName, filename, url, size, type}]}
  - 400: 400: Validation: Unsupported type, oversized or empty payload
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Caller lacks the uploader role
*/
func (handler *Handler) uploadBatch(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxBytes)

	if err := request.ParseMultipartForm(constants.MultipartMemoryLimit); err != nil {
		respond.Error(writer, request, err)
		return
	}

	folder := request.FormValue("folder")
	if !allowedFolders[folder] {
		folder = constants.FolderCovers
	}

	fileHeaders := request.MultipartForm.File["files"]
	files := make([]File, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		part, err := header.Open()
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		defer part.Close()

		files = append(files, File{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      part,
		})
	}

	results, err := handler.service.IngestBatch(request.Context(), folder, files)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string][]Result{"uploads": results})
}

// presignRequest defines the inbound JSON schema for delegated uploads.
type presignRequest struct {
	Folder      string `json:"folder"`
	ContentType string `json:"content_type"`
}

/*
POST /api/v1/uploads/presign.

Description: Issues a signed PUT URL so the client can push the payload
to object storage directly. The server derives the final key; the client
cannot pick one.

Request (Body):
  - folder: string (covers, pages, avatars)
  - content_type: string (image/jpeg, image/png, image/webp)

Response:
  - 200: {presignedUrl, fileKey, bucket, expiresIn}
  - 400: 400: Validation: Unknown folder or unsupported type
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Caller lacks the uploader role
*/
func (handler *Handler) presignUpload(writer http.ResponseWriter, request *http.Request) {
	var input presignRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.PresignUpload(request.Context(), input.Folder, input.ContentType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

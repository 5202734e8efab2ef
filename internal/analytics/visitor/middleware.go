// Copyright (c) 2026 Mangetsu. All rights reserved.

package visitor

import (
	"net/http"
	"strings"

	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
)

// Tracking records a page view for every API GET in the background.
// Writes are excluded; a POST is not a page view, and tracking must
// never sit on a mutation path.
func Tracking(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if request.Method == http.MethodGet && !strings.HasPrefix(request.URL.Path, "/health") {
				go service.Track(middleware.RealIP(request), request.UserAgent())
			}

			next.ServeHTTP(writer, request)
		})
	}
}

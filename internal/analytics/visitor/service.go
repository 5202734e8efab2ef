// Copyright (c) 2026 Mangetsu. All rights reserved.

package visitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/pkg/useragent"
)

// trackTimeout bounds the detached write so a stalled pool cannot leak
// goroutines.
const trackTimeout = 5 * time.Second

// # Service Definition

// Service handles visitor tracking and the admin analytics reads.
type Service struct {
	visitorRepo Repository
	logger      *slog.Logger
}

// NewService constructs the visitor service.
func NewService(visitorRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		visitorRepo: visitorRepo,
		logger:      logger,
	}
}

// # Tracking

/*
Track records one page view for a client, fire and forget.

Description: Runs on a detached context so it survives the request that
triggered it and never blocks or fails it. Failures are logged and
dropped. Bot traffic is classified but still stored; the dashboard
filters it out.
*/
func (service *Service) Track(ip, userAgent string) {
	if ip == "" {
		return
	}

	info := useragent.Classify(userAgent)

	context, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	err := service.visitorRepo.RecordVisit(context, &Visitor{
		IP:      ip,
		Device:  info.Device,
		Browser: info.Browser,
		OS:      info.OS,
	})
	if err != nil {
		service.logger.Warn("visitor_track_failed",
			slog.String("ip", ip),
			slog.String("error", err.Error()),
		)
	}
}

// # Admin Reads

// ListVisitors returns recent visitors for the admin dashboard.
func (service *Service) ListVisitors(context context.Context, claims *sec.AuthClaims, limit, offset int) ([]*Visitor, int, error) {

	if err := sec.Authorize(claims, "", sec.RoleAdmin); err != nil {
		return nil, 0, err
	}

	return service.visitorRepo.ListVisitors(context, limit, offset)
}

// Summarize returns the aggregate traffic view.
func (service *Service) Summarize(context context.Context, claims *sec.AuthClaims) (*Summary, error) {

	if err := sec.Authorize(claims, "", sec.RoleAdmin); err != nil {
		return nil, err
	}

	return service.visitorRepo.Summarize(context)
}

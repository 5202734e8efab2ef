// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package visitor tracks anonymous site traffic for the admin dashboard.

One row per client IP, enriched with coarse device classification. The
tracker sits behind a fire-and-forget middleware so it can never slow
down or fail a page request.
*/
package visitor

import "time"

// Visitor is one aggregated row per client IP.
type Visitor struct {
	IP          string    `json:"ip"`
	VisitCount  int64     `json:"visitCount"`
	PagesViewed int64     `json:"pagesViewed"`
	Device      string    `json:"device"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

// Summary is the aggregate view used by the dashboard.
type Summary struct {
	TotalVisitors int64            `json:"totalVisitors"`
	TotalPages    int64            `json:"totalPages"`
	ByDevice      map[string]int64 `json:"byDevice"`
	ByBrowser     map[string]int64 `json:"byBrowser"`
}

// Copyright (c) 2026 Mangetsu. All rights reserved.

package visitor

import "context"

// Repository defines persistence for visitor rows.
type Repository interface {
	// RecordVisit upserts the row for ip. A new page view always bumps
	// pagesviewed; visitcount is only bumped when the previous hit was
	// more than a session gap ago.
	RecordVisit(context context.Context, visitor *Visitor) error

	// ListVisitors returns recent visitors ordered by last activity.
	ListVisitors(context context.Context, limit, offset int) ([]*Visitor, int, error)

	// Summarize aggregates the whole table.
	Summarize(context context.Context) (*Summary, error)
}

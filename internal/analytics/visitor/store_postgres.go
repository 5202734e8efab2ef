// Copyright (c) 2026 Mangetsu. All rights reserved.

package visitor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/database/schema"
	"github.com/mangetsu-app/mangetsu/internal/platform/dberr"
)

// # PostgreSQL Repository

// visitorRepository implements [Repository] using pgx.
type visitorRepository struct {
	pool *pgxpool.Pool
}

// NewVisitorRepository constructs a PostgreSQL backed visitor store.
func NewVisitorRepository(pool *pgxpool.Pool) Repository {
	return &visitorRepository{pool: pool}
}

/*
RecordVisit upserts the per-IP row in a single statement.

Description: The session gap decides whether a hit is a new visit or
another page within the current one. Device fields are refreshed on
every hit so a visitor who switches browsers shows their latest agent.
*/
func (repository *visitorRepository) RecordVisit(context context.Context, visitor *Visitor) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, 1, 1, $2, $3, $4)
		ON CONFLICT (%s) DO UPDATE SET
			%s = %s.%s + 1,
			%s = %s.%s + CASE
				WHEN %s.%s < NOW() - $5::interval THEN 1
				ELSE 0
			END,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
	`,
		schema.AnalyticsVisitor.Table,
		schema.AnalyticsVisitor.IP, schema.AnalyticsVisitor.VisitCount, schema.AnalyticsVisitor.PagesViewed,
		schema.AnalyticsVisitor.Device, schema.AnalyticsVisitor.Browser, schema.AnalyticsVisitor.OS,
		schema.AnalyticsVisitor.IP,
		schema.AnalyticsVisitor.PagesViewed, schema.AnalyticsVisitor.Table, schema.AnalyticsVisitor.PagesViewed,
		schema.AnalyticsVisitor.VisitCount, schema.AnalyticsVisitor.Table, schema.AnalyticsVisitor.VisitCount,
		schema.AnalyticsVisitor.Table, schema.AnalyticsVisitor.LastSeenAt,
		schema.AnalyticsVisitor.Device, schema.AnalyticsVisitor.Device,
		schema.AnalyticsVisitor.Browser, schema.AnalyticsVisitor.Browser,
		schema.AnalyticsVisitor.OS, schema.AnalyticsVisitor.OS,
		schema.AnalyticsVisitor.LastSeenAt,
	)

	_, err := repository.pool.Exec(context, query,
		visitor.IP, visitor.Device, visitor.Browser, visitor.OS,
		constants.VisitorSessionGap,
	)
	if err != nil {
		return dberr.Wrap(err, "record_visit")
	}

	return nil
}

func (repository *visitorRepository) ListVisitors(context context.Context, limit, offset int) ([]*Visitor, int, error) {

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s,
			COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2
	`,
		schema.AnalyticsVisitor.IP, schema.AnalyticsVisitor.VisitCount, schema.AnalyticsVisitor.PagesViewed,
		schema.AnalyticsVisitor.Device, schema.AnalyticsVisitor.Browser, schema.AnalyticsVisitor.OS,
		schema.AnalyticsVisitor.FirstSeenAt, schema.AnalyticsVisitor.LastSeenAt,
		schema.AnalyticsVisitor.Table,
		schema.AnalyticsVisitor.LastSeenAt,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_visitors")
	}
	defer rows.Close()

	var visitors []*Visitor
	var totalCount int

	for rows.Next() {
		var visitor Visitor
		err := rows.Scan(
			&visitor.IP, &visitor.VisitCount, &visitor.PagesViewed,
			&visitor.Device, &visitor.Browser, &visitor.OS,
			&visitor.FirstSeenAt, &visitor.LastSeenAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_visitor")
		}
		visitors = append(visitors, &visitor)
	}

	return visitors, totalCount, nil
}

func (repository *visitorRepository) Summarize(context context.Context) (*Summary, error) {

	summary := &Summary{
		ByDevice:  make(map[string]int64),
		ByBrowser: make(map[string]int64),
	}

	totalsQuery := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(%s), 0) FROM %s`,
		schema.AnalyticsVisitor.PagesViewed, schema.AnalyticsVisitor.Table)

	err := repository.pool.QueryRow(context, totalsQuery).Scan(&summary.TotalVisitors, &summary.TotalPages)
	if err != nil {
		return nil, dberr.Wrap(err, "summarize_visitors")
	}

	groupQuery := fmt.Sprintf(`SELECT %s, %s, COUNT(*) FROM %s GROUP BY %s, %s`,
		schema.AnalyticsVisitor.Device, schema.AnalyticsVisitor.Browser,
		schema.AnalyticsVisitor.Table,
		schema.AnalyticsVisitor.Device, schema.AnalyticsVisitor.Browser)

	rows, err := repository.pool.Query(context, groupQuery)
	if err != nil {
		return nil, dberr.Wrap(err, "summarize_visitor_groups")
	}
	defer rows.Close()

	for rows.Next() {
		var device, browser string
		var count int64
		if err := rows.Scan(&device, &browser, &count); err != nil {
			return nil, dberr.Wrap(err, "scan_visitor_group")
		}
		summary.ByDevice[device] += count
		summary.ByBrowser[browser] += count
	}

	return summary, nil
}

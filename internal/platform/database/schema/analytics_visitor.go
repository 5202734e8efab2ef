package schema

// AnalyticsVisitorTable represents the 'analytics.visitor' table
type AnalyticsVisitorTable struct {
	Table       string
	IP          string
	VisitCount  string
	PagesViewed string
	Device      string
	Browser     string
	OS          string
	FirstSeenAt string
	LastSeenAt  string
}

// AnalyticsVisitor is the schema definition for analytics.visitor
var AnalyticsVisitor = AnalyticsVisitorTable{
	Table:       "analytics.visitor",
	IP:          "ip",
	VisitCount:  "visitcount",
	PagesViewed: "pagesviewed",
	Device:      "device",
	Browser:     "browser",
	OS:          "os",
	FirstSeenAt: "firstseenat",
	LastSeenAt:  "lastseenat",
}

func (t AnalyticsVisitorTable) Columns() []string {
	return []string{
		t.IP, t.VisitCount, t.PagesViewed, t.Device, t.Browser, t.OS,
		t.FirstSeenAt, t.LastSeenAt,
	}
}

package schema

// SocialNotificationTable represents the 'social.notification' table
type SocialNotificationTable struct {
	Table      string
	ID         string
	UserID     string
	ActorID    string
	Type       string
	Title      string
	Message    string
	TargetKind string
	TargetID   string
	IsRead     string
	CreatedAt  string
}

// SocialNotification is the schema definition for social.notification
var SocialNotification = SocialNotificationTable{
	Table:      "social.notification",
	ID:         "id",
	UserID:     "userid",
	ActorID:    "actorid",
	Type:       "type",
	Title:      "title",
	Message:    "message",
	TargetKind: "targetkind",
	TargetID:   "targetid",
	IsRead:     "isread",
	CreatedAt:  "createdat",
}

func (t SocialNotificationTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.ActorID, t.Type, t.Title, t.Message,
		t.TargetKind, t.TargetID, t.IsRead, t.CreatedAt,
	}
}

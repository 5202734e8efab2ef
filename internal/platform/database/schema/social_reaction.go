package schema

// SocialReactionTable represents the 'social.reaction' table
type SocialReactionTable struct {
	Table      string
	ID         string
	UserID     string
	TargetKind string
	TargetID   string
	Kind       string
	CreatedAt  string
	UpdatedAt  string
}

// SocialReaction is the schema definition for social.reaction
var SocialReaction = SocialReactionTable{
	Table:      "social.reaction",
	ID:         "id",
	UserID:     "userid",
	TargetKind: "targetkind",
	TargetID:   "targetid",
	Kind:       "kind",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t SocialReactionTable) Columns() []string {
	return []string{t.ID, t.UserID, t.TargetKind, t.TargetID, t.Kind, t.CreatedAt, t.UpdatedAt}
}

package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table        string
	ID           string
	TitleID      string
	Ordinal      string
	Name         string
	Volume       string
	LikeCount    string
	DislikeCount string
	ViewCount    string
	UploaderID   string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:        "core.chapter",
	ID:           "id",
	TitleID:      "titleid",
	Ordinal:      "ordinal",
	Name:         "name",
	Volume:       "volume",
	LikeCount:    "likecount",
	DislikeCount: "dislikecount",
	ViewCount:    "viewcount",
	UploaderID:   "uploaderid",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// Columns returns all standard column names
func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.TitleID, t.Ordinal, t.Name, t.Volume, t.LikeCount,
		t.DislikeCount, t.ViewCount, t.UploaderID, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}

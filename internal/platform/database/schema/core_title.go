package schema

// CoreTitleTable represents the 'core.title' table
type CoreTitleTable struct {
	Table        string
	ID           string
	Name         string
	Slug         string
	Author       string
	Artist       string
	Synopsis     string
	Status       string
	CoverURL     string
	LikeCount    string
	DislikeCount string
	ViewCount    string
	ChapterCount string
	UploaderID   string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// CoreTitle is the schema definition for core.title
var CoreTitle = CoreTitleTable{
	Table:        "core.title",
	ID:           "id",
	Name:         "name",
	Slug:         "slug",
	Author:       "author",
	Artist:       "artist",
	Synopsis:     "synopsis",
	Status:       "status",
	CoverURL:     "coverurl",
	LikeCount:    "likecount",
	DislikeCount: "dislikecount",
	ViewCount:    "viewcount",
	ChapterCount: "chaptercount",
	UploaderID:   "uploaderid",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// Columns returns all standard column names
func (t CoreTitleTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.Author, t.Artist, t.Synopsis, t.Status,
		t.CoverURL, t.LikeCount, t.DislikeCount, t.ViewCount, t.ChapterCount,
		t.UploaderID, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}

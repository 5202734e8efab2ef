package genre

import "time"

// Genre is a classification attribute applied to titles.
type Genre struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	TitleCount int       `json:"title_count,omitempty"`
	CreatedAt  time.Time `json:"-"`
}

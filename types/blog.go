package types

import (
	"strings"
	"time"
)

// Blog represents a single article on the platform.
// A blog is always fully formed at creation time: every field below except
// IsPublished must be present before it is persisted.
type Blog struct {
	// ID is the unique identifier of the blog, generated at creation.
	ID string `json:"_id" db:"id"`

	// Title is the headline of the article.
	Title string `json:"title" db:"title"`

	// SubTitle is the secondary headline shown under the title.
	SubTitle string `json:"subTitle" db:"sub_title"`

	// Description is the article body as rich-text HTML.
	Description string `json:"description" db:"description"`

	// Category is the free-form category label the article is filed under.
	Category string `json:"category" db:"category"`

	// Image is the durable URL of the cover image, as returned by the
	// asset storage backend after upload.
	Image string `json:"image" db:"image"`

	// IsPublished gates public visibility. Unpublished blogs are only
	// visible through the authenticated admin listings.
	IsPublished bool `json:"isPublished" db:"is_published"`

	// CreatedAt is the timestamp at which the blog was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// BlogDraft is the client-submitted payload for a new blog, carried as the
// "blog" JSON field of the multipart create request. The cover image travels
// separately as the "image" file part.
type BlogDraft struct {
	Title       string `json:"title"`
	SubTitle    string `json:"subTitle"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsPublished bool   `json:"isPublished"`

	// LegacyCategory accepts the historical misspelled field name still
	// emitted by old clients. Normalize folds it into Category; nothing
	// past the wire boundary ever reads it.
	LegacyCategory string `json:"catogry,omitempty"`
}

// Normalize trims whitespace and folds the legacy category alias into the
// canonical Category field. It is called exactly once, when the draft is
// decoded off the wire.
func (d *BlogDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.SubTitle = strings.TrimSpace(d.SubTitle)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.LegacyCategory = strings.TrimSpace(d.LegacyCategory)
	if d.Category == "" && d.LegacyCategory != "" {
		d.Category = d.LegacyCategory
	}
	d.LegacyCategory = ""
}

// Complete reports whether every required text field is present.
func (d BlogDraft) Complete() bool {
	return d.Title != "" && d.SubTitle != "" && d.Description != "" && d.Category != ""
}

// Dashboard aggregates the counts and recent activity shown on the admin
// dashboard.
type Dashboard struct {
	// RecentBlogs holds the five most recently created blogs.
	RecentBlogs []Blog `json:"recentBlogs"`

	// TotalBlogs is the number of blogs in any publish state.
	TotalBlogs int `json:"totalBlogs"`

	// TotalComments is the number of comments across all blogs.
	TotalComments int `json:"totalComments"`

	// DraftBlogs is the number of blogs not yet published.
	DraftBlogs int `json:"draftBlogs"`
}

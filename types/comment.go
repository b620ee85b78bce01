package types

import "time"

// Comment represents a reader response attached to exactly one blog.
// Comments are created unapproved and only become publicly visible once an
// admin approves them.
type Comment struct {
	// ID is the unique identifier of the comment, generated at creation.
	ID string `json:"_id" db:"id"`

	// Blog is the identifier of the blog this comment belongs to.
	Blog string `json:"blog" db:"blog_id"`

	// Name is the display name supplied by the commenter.
	Name string `json:"name" db:"name"`

	// Content is the comment text.
	Content string `json:"content" db:"content"`

	// IsApproved gates public visibility. Approval is monotonic: there is
	// no unapprove operation.
	IsApproved bool `json:"isApproved" db:"is_approved"`

	// CreatedAt is the timestamp at which the comment was submitted.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// BlogTitle carries the parent blog's title in the moderation listing.
	// It is empty elsewhere.
	BlogTitle string `json:"blogTitle,omitempty" db:"blog_title"`
}

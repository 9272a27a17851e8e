package models

import "time"

type Post struct {
	ID          int
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	AuthorID    int
	CategoryID  int
	LocationID  *int
	CreatedAt   time.Time

	// Joined display fields, populated by the listing queries.
	Author            string // username of the author
	CategoryTitle     string
	CategorySlug      string
	CategoryPublished bool
	LocationName      string
	CommentCount      int
}

// Visible reports whether the post satisfies the public visibility
// invariant: published, in a published category, not future-dated.
func (p Post) Visible(now time.Time) bool {
	return p.IsPublished && p.CategoryPublished && !p.PubDate.After(now)
}

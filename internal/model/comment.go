package model

import "time"

// Comment is owned by its parent post. Comments are prepended newest-first and
// are never edited or deleted. AuthorUsername is a creation-time snapshot,
// same as on Post.
type Comment struct {
	ID             int64     `db:"id" json:"-"`
	PostID         int64     `db:"post_id" json:"-"`
	AuthorID       int64     `db:"author_id" json:"authorId"`
	AuthorUsername string    `db:"author_username" json:"authorUsername"`
	Text           string    `db:"text_content" json:"text"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// CreateCommentRequest is the request body for commenting on a post.
// Empty text is accepted; the store does not reject it.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

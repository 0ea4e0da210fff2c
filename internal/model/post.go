package model

import (
	"errors"
	"time"
)

// Post represents a user's post. AuthorUsername is a snapshot taken at creation
// time and is never resynced if the author renames.
type Post struct {
	ID             int64     `db:"id" json:"id"`
	AuthorID       int64     `db:"author_id" json:"authorId"`
	AuthorUsername string    `db:"author_username" json:"authorUsername"`
	Body           string    `db:"body" json:"body"`
	Image          string    `db:"image" json:"image"` // opaque blob/reference, stored verbatim
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`

	// Hydrated from post_likes and comments, newest comment first.
	Likes    []int64   `json:"likes"`
	Comments []Comment `json:"comments"`
}

// CreatePostRequest is the request body for creating a post. The author is
// taken from the authenticated principal, never from the body.
type CreatePostRequest struct {
	Body  string `json:"body"`
	Image string `json:"image"`
}

// LikeResult carries the full likes set after a toggle, plus which state the
// toggle landed on.
type LikeResult struct {
	Liked bool
	Likes []int64
}

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("not authorized to delete this post")
	ErrEmptyContent = errors.New("content or image is required")
)

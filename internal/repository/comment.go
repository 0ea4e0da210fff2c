package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialwave/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment. The author username is snapshotted at creation
// time, same as on posts.
func (r *commentRepository) Create(ctx context.Context, postID, authorID int64, authorUsername, text string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (post_id, author_id, author_username, text_content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, author_id, author_username, text_content, created_at
	`

	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, postID, authorID, authorUsername, text)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	return &comment, nil
}

// GetByPostID returns a post's comments newest-first.
func (r *commentRepository) GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT id, post_id, author_id, author_username, text_content, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC, id DESC
	`
	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	return comments, nil
}

// GetByPostIDs batch-fetches comments for many posts in one query, newest
// first within each post.
func (r *commentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	result := make(map[int64][]model.Comment, len(postIDs))
	for _, id := range postIDs {
		result[id] = []model.Comment{}
	}
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, post_id, author_id, author_username, text_content, created_at
		FROM comments
		WHERE post_id = ANY($1)
		ORDER BY created_at DESC, id DESC
	`
	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments, query, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get comments by post ids: %w", err)
	}

	for _, c := range comments {
		result[c.PostID] = append(result[c.PostID], c)
	}

	return result, nil
}

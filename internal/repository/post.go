package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"socialwave/internal/cache"
	"socialwave/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post. The author username is snapshotted into the row.
func (r *postRepository) Create(ctx context.Context, authorID int64, authorUsername, body, image string) (*model.Post, error) {
	query := `
		INSERT INTO posts (author_id, author_username, body, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id, author_id, author_username, body, image, created_at
	`

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, authorID, authorUsername, body, image)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	post.Likes = []int64{}
	post.Comments = []model.Comment{}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, author_id, author_username, body, image, created_at
		FROM posts
		WHERE id = $1
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// GetByIDs retrieves multiple posts and re-orders them to match the input
// order. Used for hydrating the feed from the timeline cache.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, author_id, author_username, body, image, created_at
		FROM posts
		WHERE id = ANY($1)
	`
	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	postsMap := make(map[int64]model.Post, len(posts))
	for _, p := range posts {
		postsMap[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := postsMap[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// ListAll returns every post newest-first.
func (r *postRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	query := `
		SELECT id, author_id, author_username, body, image, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`
	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListByUsername returns a user's posts newest-first, matching the snapshotted
// author username case-insensitively.
func (r *postRepository) ListByUsername(ctx context.Context, username string) ([]model.Post, error) {
	query := `
		SELECT id, author_id, author_username, body, image, created_at
		FROM posts
		WHERE LOWER(author_username) = LOWER($1)
		ORDER BY created_at DESC, id DESC
	`
	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, username); err != nil {
		return nil, fmt.Errorf("list posts by username: %w", err)
	}
	return posts, nil
}

// Delete removes a post and its owned likes and comments in one transaction.
// The owned rows go first so the post's foreign keys never block the delete.
// Ownership is checked by the service before calling this.
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete post likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}

	return tx.Commit()
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// ToggleLike flips userID's like on postID in a single transaction, the same
// shape as FollowRepository.Toggle. The (post_id, user_id) primary key keeps
// the like set duplicate-free under concurrent toggles.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, insert, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	liked := rowsAffected > 0
	if !liked {
		del := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
		if _, err := tx.ExecContext(ctx, del, postID, userID); err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return liked, nil
}

func (r *postRepository) GetLikerIDs(ctx context.Context, postID int64) ([]int64, error) {
	query := `SELECT user_id FROM post_likes WHERE post_id = $1`
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, postID); err != nil {
		return nil, fmt.Errorf("get liker ids: %w", err)
	}
	return ids, nil
}

// GetLikersByPostIDs batch-fetches liker ids for many posts in one query,
// avoiding N+1 when hydrating a feed page.
func (r *postRepository) GetLikersByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(postIDs))
	for _, id := range postIDs {
		result[id] = []int64{}
	}
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1)`
	type row struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get likers by post ids: %w", err)
	}

	for _, r := range rows {
		result[r.PostID] = append(result[r.PostID], r.UserID)
	}

	return result, nil
}

// ListRecent returns (id, timestamp) pairs of the newest posts, for warming
// the timeline cache.
func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]cache.PostScore, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint AS timestamp
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`
	type row struct {
		ID        int64 `db:"id"`
		Timestamp int64 `db:"timestamp"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}

	posts := make([]cache.PostScore, len(rows))
	for i, r := range rows {
		posts[i] = cache.PostScore{PostID: r.ID, Timestamp: r.Timestamp}
	}
	return posts, nil
}

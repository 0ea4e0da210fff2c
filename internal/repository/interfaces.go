package repository

import (
	"context"
	"time"

	"socialwave/internal/cache"
	"socialwave/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByUsername resolves a username with case-insensitive exact match.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type FollowRepository interface {
	// Toggle flips the follow edge follower->followee inside a single
	// transaction and reports which state it landed on. Insert wins over
	// delete when the edge is absent; otherwise the edge is removed.
	Toggle(ctx context.Context, followerID, followeeID int64) (followed bool, err error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	// GetFollowerIDs returns ids of users following userID ("who follows me").
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	// GetFolloweeIDs returns ids of users userID follows ("who I follow").
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, authorID int64, authorUsername, body, image string) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// GetByIDs returns posts in the same order as postIDs, skipping missing ids.
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	// ListAll returns every post newest-first. The feed is global, not
	// follow-scoped.
	ListAll(ctx context.Context) ([]model.Post, error)
	// ListByUsername matches the creation-time author username snapshot,
	// case-insensitively.
	ListByUsername(ctx context.Context, username string) ([]model.Post, error)
	Delete(ctx context.Context, postID int64) error
	Exists(ctx context.Context, postID int64) (bool, error)
	// Count returns the total number of posts in the store.
	Count(ctx context.Context) (int64, error)
	// ToggleLike flips userID's like on postID inside a single transaction
	// and reports which state it landed on.
	ToggleLike(ctx context.Context, postID, userID int64) (liked bool, err error)
	GetLikerIDs(ctx context.Context, postID int64) ([]int64, error)
	// GetLikersByPostIDs batch-fetches liker ids for many posts in one query.
	GetLikersByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
	// ListRecent returns (id, timestamp) pairs of the newest posts, for
	// warming the timeline cache.
	ListRecent(ctx context.Context, limit int) ([]cache.PostScore, error)
}

type CommentRepository interface {
	Create(ctx context.Context, postID, authorID int64, authorUsername, text string) (*model.Comment, error)
	// GetByPostID returns a post's comments newest-first.
	GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error)
	// GetByPostIDs batch-fetches comments for many posts, newest-first per post.
	GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

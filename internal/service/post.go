package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"socialwave/internal/model"
	"socialwave/internal/queue"
	"socialwave/internal/repository"
)

// PostService handles post creation, deletion, likes and comments.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher
}

// NewPostService creates a PostService. publisher may be nil; timeline events
// are then skipped and the feed falls back to the database.
func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository, publisher queue.Publisher) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create stores a new post. At least one of body or image must be non-empty.
// The author identity comes from the authenticated principal; the username is
// snapshotted onto the post at creation time.
func (s *PostService) Create(ctx context.Context, authorID int64, req model.CreatePostRequest) (*model.Post, error) {
	if req.Body == "" && req.Image == "" {
		return nil, model.ErrEmptyContent
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, author.ID, author.Username, req.Body, req.Image)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.publish(ctx, queue.NewPostCreatedEvent(post.ID, post.AuthorID, post.CreatedAt))

	log.Printf("[PostService] Create OK: post=%d author=%d", post.ID, post.AuthorID)
	return post, nil
}

// Get returns a single post with likes and comments attached.
func (s *PostService) Get(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. The acting identifier must match the post's author
// id or the author username snapshot; either form authorizes the delete.
func (s *PostService) Delete(ctx context.Context, postID int64, actingIdentifier string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if actingIdentifier != strconv.FormatInt(post.AuthorID, 10) && actingIdentifier != post.AuthorUsername {
		return model.ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.publish(ctx, queue.NewPostDeletedEvent(post.ID, post.AuthorID))

	log.Printf("[PostService] Delete OK: post=%d author=%d", post.ID, post.AuthorID)
	return nil
}

// ToggleLike likes the post if the user hasn't liked it, removes the like
// otherwise. Returns the full liker set after the flip.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID int64) (*model.LikeResult, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	liked, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	likes, err := s.postRepo.GetLikerIDs(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	if likes == nil {
		likes = []int64{}
	}

	return &model.LikeResult{Liked: liked, Likes: likes}, nil
}

// AddComment appends a comment to a post and returns the post's full comment
// list, newest first. Empty text is accepted.
func (s *PostService) AddComment(ctx context.Context, postID, authorID int64, req model.CreateCommentRequest) ([]model.Comment, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.Create(ctx, postID, author.ID, author.Username, req.Text); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// ListByUsername returns the named user's posts newest-first, fully hydrated.
// The match is against the creation-time username snapshot.
func (s *PostService) ListByUsername(ctx context.Context, username string) ([]model.Post, error) {
	posts, err := s.postRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list posts by username: %w", err)
	}

	if err := hydratePosts(ctx, s.postRepo, s.commentRepo, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) hydrate(ctx context.Context, post *model.Post) error {
	likes, err := s.postRepo.GetLikerIDs(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	comments, err := s.commentRepo.GetByPostID(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}

	if likes == nil {
		likes = []int64{}
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	post.Likes = likes
	post.Comments = comments
	return nil
}

// publish sends a timeline event best-effort. A queue failure never fails the
// write; the feed path falls back to the database when the cache is stale.
func (s *PostService) publish(ctx context.Context, event queue.TimelineEvent) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, queue.StreamTimeline, event); err != nil {
		log.Printf("[PostService] publish %s failed: post=%d err=%v", event.Type, event.PostID, err)
	}
}

// hydratePosts attaches likes and comments to a post slice using the batch
// queries, preserving order.
func hydratePosts(ctx context.Context, postRepo repository.PostRepository, commentRepo repository.CommentRepository, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	likesByPost, err := postRepo.GetLikersByPostIDs(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	commentsByPost, err := commentRepo.GetByPostIDs(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}

	for i := range posts {
		likes := likesByPost[posts[i].ID]
		if likes == nil {
			likes = []int64{}
		}
		comments := commentsByPost[posts[i].ID]
		if comments == nil {
			comments = []model.Comment{}
		}
		posts[i].Likes = likes
		posts[i].Comments = comments
	}
	return nil
}

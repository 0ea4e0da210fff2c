package service

import (
	"context"
	"fmt"
	"log"

	"socialwave/internal/cache"
	"socialwave/internal/model"
	"socialwave/internal/repository"
)

// FeedService serves the global chronological feed. The Redis timeline cache
// is consulted first; on a miss it is warmed from the database. The database
// is always the source of truth.
type FeedService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	timelineCache cache.TimelineCache
}

// NewFeedService creates a FeedService. timelineCache may be nil; the feed is
// then served straight from the database.
func NewFeedService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, timelineCache cache.TimelineCache) *FeedService {
	return &FeedService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		timelineCache: timelineCache,
	}
}

// ListFeed returns every post newest-first, fully hydrated with likes and
// comments. All users see the same feed regardless of who they follow.
func (s *FeedService) ListFeed(ctx context.Context) ([]model.Post, error) {
	if s.timelineCache == nil {
		return s.listFromDB(ctx)
	}

	posts, err := s.listFromCache(ctx)
	if err != nil {
		log.Printf("[FeedService] cache path failed, falling back to DB: %v", err)
		return s.listFromDB(ctx)
	}
	return posts, nil
}

func (s *FeedService) listFromCache(ctx context.Context) ([]model.Post, error) {
	exists, err := s.timelineCache.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check timeline: %w", err)
	}

	if !exists {
		recent, err := s.postRepo.ListRecent(ctx, cache.TimelineCap)
		if err != nil {
			return nil, fmt.Errorf("load recent posts: %w", err)
		}
		if err := s.timelineCache.Warm(ctx, recent); err != nil {
			return nil, fmt.Errorf("warm timeline: %w", err)
		}
	}

	// The cache is capped, so it can hold fewer posts than the store. The
	// feed has no pagination; a trimmed cache must not shorten it, so only
	// a complete cache is allowed to serve.
	size, err := s.timelineCache.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("timeline size: %w", err)
	}
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if size < total {
		return s.listFromDB(ctx)
	}

	postIDs, err := s.timelineCache.GetRecent(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	// GetByIDs preserves the cache's newest-first order and silently drops
	// ids whose posts were deleted between cache read and DB read.
	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	if err := hydratePosts(ctx, s.postRepo, s.commentRepo, posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

func (s *FeedService) listFromDB(ctx context.Context) ([]model.Post, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := hydratePosts(ctx, s.postRepo, s.commentRepo, posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

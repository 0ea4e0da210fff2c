package service

import (
	"context"
	"fmt"
	"log"

	"socialwave/internal/model"
	"socialwave/internal/repository"
)

// FollowService handles the follow/unfollow toggle and follower listings.
type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewFollowService creates a FollowService.
func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *FollowService {
	return &FollowService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// Toggle follows the target if not currently followed, unfollows otherwise.
// The two users' follower/following views always move together because the
// edge is a single row.
func (s *FollowService) Toggle(ctx context.Context, followerID, followeeID int64) (*model.FollowResult, error) {
	if followerID == followeeID {
		return nil, model.ErrCannotFollowSelf
	}

	// Both sides must exist before touching the edge.
	if _, err := s.userRepo.GetByID(ctx, followerID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return nil, err
	}

	followed, err := s.followRepo.Toggle(ctx, followerID, followeeID)
	if err != nil {
		return nil, fmt.Errorf("toggle follow: %w", err)
	}

	msg := "user has been unfollowed"
	if followed {
		msg = "user has been followed"
	}

	log.Printf("[FollowService] Toggle OK: follower=%d followee=%d followed=%v", followerID, followeeID, followed)
	return &model.FollowResult{Followed: followed, Msg: msg}, nil
}

// ListFollowers returns the users following the named user.
func (s *FollowService) ListFollowers(ctx context.Context, username string) ([]model.UserSummary, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.GetFollowers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	if followers == nil {
		followers = []model.UserSummary{}
	}
	return followers, nil
}

// ListFollowing returns the users the named user follows.
func (s *FollowService) ListFollowing(ctx context.Context, username string) ([]model.UserSummary, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	following, err := s.followRepo.GetFollowing(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	if following == nil {
		following = []model.UserSummary{}
	}
	return following, nil
}

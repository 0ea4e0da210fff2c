package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"socialwave/internal/model"
	"socialwave/internal/repository"
)

// UserService handles account registration, login and profile reads.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewUserService creates a UserService.
func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// Signup registers a new account. Email and username must both be unused.
// The password is stored as a bcrypt hash, never in plaintext.
func (s *UserService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	emailTaken, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return nil, model.ErrEmailExists
	}

	usernameTaken, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if usernameTaken {
		return nil, model.ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashed),
	}

	// The unique constraints in the repository still back this up if a
	// concurrent signup slips past the exists checks.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.Followers = []int64{}
	user.Following = []int64{}

	log.Printf("[UserService] Signup OK: user=%d username=%s", user.ID, user.Username)
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// collapse into the same error so callers can't probe for registered emails.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == model.ErrUserNotFound {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := s.hydrateFollowLists(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[UserService] Login OK: user=%d username=%s", user.ID, user.Username)
	return user, nil
}

// GetProfile resolves a user by username and attaches their follower and
// following id lists. The password hash never leaves the model's JSON shape.
func (s *UserService) GetProfile(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.hydrateFollowLists(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID resolves a user by id with follow lists attached. Used by the /me
// endpoint.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.hydrateFollowLists(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) hydrateFollowLists(ctx context.Context, user *model.User) error {
	followers, err := s.followRepo.GetFollowerIDs(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load followers: %w", err)
	}
	following, err := s.followRepo.GetFolloweeIDs(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load following: %w", err)
	}

	if followers == nil {
		followers = []int64{}
	}
	if following == nil {
		following = []int64{}
	}

	user.Followers = followers
	user.Following = following
	return nil
}

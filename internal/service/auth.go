package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"socialwave/internal/model"
	"socialwave/internal/repository"
)

// AuthService issues and validates access tokens and manages the refresh
// token lifecycle. Access tokens are stateless JWTs; refresh tokens are
// opaque UUIDs persisted as SHA-256 hashes and rotated on every use.
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository

	jwtSecret          []byte
	accessTokenMaxAge  time.Duration
	refreshTokenMaxAge time.Duration
}

// NewAuthService creates an AuthService. Max ages are in seconds.
func NewAuthService(userRepo repository.UserRepository, refreshTokenRepo repository.RefreshTokenRepository, jwtSecret string, accessTokenMaxAge, refreshTokenMaxAge int) *AuthService {
	return &AuthService{
		userRepo:           userRepo,
		refreshTokenRepo:   refreshTokenRepo,
		jwtSecret:          []byte(jwtSecret),
		accessTokenMaxAge:  time.Duration(accessTokenMaxAge) * time.Second,
		refreshTokenMaxAge: time.Duration(refreshTokenMaxAge) * time.Second,
	}
}

// GenerateTokenPair creates an access token and a persisted refresh token for
// a user. Called on signup and login.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID int64, username string) (*model.TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID, username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	rawRefresh := uuid.NewString()
	refreshToken := &model.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(rawRefresh),
		ExpiresAt: time.Now().Add(s.refreshTokenMaxAge),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresIn:    int(s.accessTokenMaxAge.Seconds()),
	}, nil
}

// RefreshTokens rotates a refresh token: the presented token is revoked and a
// new pair is issued. Presenting an already-revoked token is treated as theft
// evidence and revokes every live token the user holds.
func (s *AuthService) RefreshTokens(ctx context.Context, rawRefresh string) (*model.TokenPair, error) {
	stored, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(rawRefresh))
	if err != nil {
		return nil, err
	}

	if stored.IsRevoked() {
		log.Printf("[AuthService] refresh token reuse detected: user=%d token=%s", stored.UserID, stored.ID)
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, stored.UserID); err != nil {
			return nil, fmt.Errorf("revoke token family: %w", err)
		}
		return nil, model.ErrRefreshTokenReused
	}

	if stored.IsExpired() {
		return nil, model.ErrRefreshTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve token owner: %w", err)
	}

	accessToken, err := s.generateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	newRaw := uuid.NewString()
	newToken := &model.RefreshToken{
		UserID:    stored.UserID,
		TokenHash: hashToken(newRaw),
		ExpiresAt: time.Now().Add(s.refreshTokenMaxAge),
	}
	if err := s.refreshTokenRepo.Create(ctx, newToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID, &newToken.ID); err != nil {
		return nil, fmt.Errorf("revoke old refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRaw,
		ExpiresIn:    int(s.accessTokenMaxAge.Seconds()),
	}, nil
}

// Revoke invalidates a refresh token on logout. Unknown tokens are not an
// error; logout is idempotent.
func (s *AuthService) Revoke(ctx context.Context, rawRefresh string) error {
	stored, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(rawRefresh))
	if err != nil {
		if err == model.ErrRefreshTokenNotFound {
			return nil
		}
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, stored.ID, nil)
}

// ValidateAccessToken parses and verifies an access token, returning the
// embedded principal.
func (s *AuthService) ValidateAccessToken(tokenString string) (userID int64, username string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("missing sub claim")
	}
	name, _ := claims["username"].(string)

	return int64(sub), name, nil
}

func (s *AuthService) generateAccessToken(userID int64, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTokenMaxAge).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

package model

import (
	"errors"
	"time"
)

// User represents an account in the system.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" keeps the credential out of JSON
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`

	// Derived from the follows relation at read time, not columns on users.
	Followers []int64 `json:"followers"`
	Following []int64 `json:"following"`
}

// UserSummary is the compact shape used in follower/following listings.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}

// SignupRequest represents the data needed to register a new account.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in. Login is by email.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful signup or login.
type AuthResponse struct {
	Msg          string  `json:"msg"`
	UserID       int64   `json:"userId"`
	Username     string  `json:"username"`
	Followers    []int64 `json:"followers"`
	Following    []int64 `json:"following"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresIn    int     `json:"expiresIn"`
}

var (
	// ErrUserNotFound is returned when a user cannot be resolved by id or username
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when signing up with an already registered email
	ErrEmailExists = errors.New("email already registered")

	// ErrUsernameExists is returned when signing up with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned on login failure. Deliberately does not
	// distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

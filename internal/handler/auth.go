package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"socialwave/internal/httputil"
	"socialwave/internal/model"
	"socialwave/internal/service"
	"socialwave/internal/transport/http/middleware"
)

// AuthHandler handles signup, login and the token lifecycle endpoints.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "Username, email and password are required")
		return
	}

	user, err := h.userService.Signup(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmailExists), errors.Is(err, model.ErrUsernameExists):
			httputil.WriteBadRequest(w, "User already exists")
		default:
			log.Printf("[AuthHandler] Signup error: %v", err)
			httputil.WriteInternalError(w, "Failed to create user")
		}
		return
	}

	tokens, err := h.authService.GenerateTokenPair(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Printf("[AuthHandler] Signup token error: %v", err)
		httputil.WriteInternalError(w, "Failed to issue tokens")
		return
	}

	h.setAuthCookies(w, tokens)
	httputil.WriteJSON(w, http.StatusOK, authResponse("User created successfully", user, tokens))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteBadRequest(w, "Invalid credentials")
		default:
			log.Printf("[AuthHandler] Login error: %v", err)
			httputil.WriteInternalError(w, "Failed to log in")
		}
		return
	}

	tokens, err := h.authService.GenerateTokenPair(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Printf("[AuthHandler] Login token error: %v", err)
		httputil.WriteInternalError(w, "Failed to issue tokens")
		return
	}

	h.setAuthCookies(w, tokens)
	httputil.WriteJSON(w, http.StatusOK, authResponse("Login successful", user, tokens))
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	raw := ""
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		raw = req.RefreshToken
	}
	if raw == "" {
		raw = refreshTokenFromCookie(r)
	}
	if raw == "" {
		httputil.WriteBadRequest(w, "Refresh token is required")
		return
	}

	tokens, err := h.authService.RefreshTokens(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenNotFound):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid refresh token")
		case errors.Is(err, model.ErrRefreshTokenExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Refresh token has expired")
		case errors.Is(err, model.ErrRefreshTokenReused):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenReused, "Refresh token has already been used")
		default:
			log.Printf("[AuthHandler] Refresh error: %v", err)
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	h.setAuthCookies(w, tokens)
	httputil.WriteJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.LogoutRequest
	raw := ""
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		raw = req.RefreshToken
	}
	if raw == "" {
		raw = refreshTokenFromCookie(r)
	}
	if raw == "" {
		httputil.WriteBadRequest(w, "Refresh token is required")
		return
	}

	if err := h.authService.Revoke(r.Context(), raw); err != nil {
		log.Printf("[AuthHandler] Logout error: %v", err)
		httputil.WriteInternalError(w, "Failed to log out")
		return
	}

	h.clearAuthCookies(w)
	httputil.WriteMsg(w, http.StatusOK, "Logged out")
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[AuthHandler] Me error: %v", err)
			httputil.WriteInternalError(w, "Failed to load user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// refreshTokenFromCookie is the fallback for browser clients that carry the
// refresh token in a cookie instead of the JSON body.
func refreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie("refresh_token")
	if err == nil {
		return cookie.Value
	}
	return ""
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, tokens *model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   tokens.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		Path:     "/api/auth",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", Path: "/api/auth", MaxAge: -1, HttpOnly: true})
}

func authResponse(msg string, user *model.User, tokens *model.TokenPair) model.AuthResponse {
	return model.AuthResponse{
		Msg:          msg,
		UserID:       user.ID,
		Username:     user.Username,
		Followers:    user.Followers,
		Following:    user.Following,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}
}

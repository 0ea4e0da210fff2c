package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialwave/internal/httputil"
	"socialwave/internal/model"
	"socialwave/internal/service"
	"socialwave/internal/transport/http/middleware"
)

// UserHandler handles profile reads and the follow toggle.
type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userService *service.UserService, followService *service.FollowService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
	}
}

// GetProfile handles GET /api/users/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.userService.GetProfile(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] GetProfile error: %v", err)
			httputil.WriteInternalError(w, "Failed to load user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// ToggleFollow handles PUT /api/users/{userID}/follow
// The target is identified by id; the follower comes from the access token.
func (h *UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	result, err := h.followService.Toggle(r.Context(), followerID, followeeID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteForbidden(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] ToggleFollow error: %v", err)
			httputil.WriteInternalError(w, "Failed to toggle follow")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ListFollowers handles GET /api/users/{username}/followers
func (h *UserHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	followers, err := h.followService.ListFollowers(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] ListFollowers error: %v", err)
			httputil.WriteInternalError(w, "Failed to load followers")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, followers)
}

// ListFollowing handles GET /api/users/{username}/following
func (h *UserHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	following, err := h.followService.ListFollowing(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] ListFollowing error: %v", err)
			httputil.WriteInternalError(w, "Failed to load following")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, following)
}

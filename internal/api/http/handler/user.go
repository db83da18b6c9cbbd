package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/authflow-server/internal/api/http/response"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
	"github.com/dtroode/authflow-server/internal/service"
)

const (
	// avatarField is the multipart form field carrying the avatar file.
	avatarField = "avatar"
	// multipartOverhead is the allowance for boundaries and part headers on
	// top of the file itself.
	multipartOverhead = 1 << 20
)

// ProfileService defines the self service account operations.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (model.User, error)
	Update(ctx context.Context, userID uuid.UUID, name, email string) (model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	UploadAvatar(ctx context.Context, userID uuid.UUID, upload service.AvatarUpload) (string, error)
	OpenAvatar(ctx context.Context, name string) (io.ReadCloser, model.ObjectInfo, error)
}

// User handles the /users endpoints and avatar downloads.
type User struct {
	profileService ProfileService
	contextManager model.ContextManager
	logger         *logger.Logger
	maxUploadBytes int64
}

// NewUser creates a new User handler. A positive maxUploadBytes caps the
// avatar request body before it is parsed.
func NewUser(profileService ProfileService, contextManager model.ContextManager, maxUploadBytes int64, logger *logger.Logger) *User {
	return &User{
		profileService: profileService,
		contextManager: contextManager,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetProfile returns the caller's profile.
func (h *User) GetProfile(c *gin.Context) {
	identity, ok := callerIdentity(c, h.contextManager)
	if !ok {
		return
	}

	user, err := h.profileService.Get(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, "profile lookup failed", err)
		return
	}

	response.OK(c, http.StatusOK, newProfileResponse(user), "Profile retrieved successfully")
}

// UpdateProfile changes name and email of the caller.
func (h *User) UpdateProfile(c *gin.Context) {
	identity, ok := callerIdentity(c, h.contextManager)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), identity.UserID, req.Name, req.Email)
	if err != nil {
		h.fail(c, "profile update failed", err)
		return
	}

	response.OK(c, http.StatusOK, newProfileResponse(user), "Profile updated successfully")
}

// ChangePassword replaces the caller's password after verifying the current one.
func (h *User) ChangePassword(c *gin.Context) {
	identity, ok := callerIdentity(c, h.contextManager)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !bind(c, &req) {
		return
	}

	err := h.profileService.ChangePassword(c.Request.Context(), identity.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.fail(c, "password change failed", err)
		return
	}

	response.OK(c, http.StatusOK, "Password changed", "Password changed successfully")
}

// DeleteAccount removes the caller and all of its sessions.
func (h *User) DeleteAccount(c *gin.Context) {
	identity, ok := callerIdentity(c, h.contextManager)
	if !ok {
		return
	}

	if err := h.profileService.DeleteAccount(c.Request.Context(), identity.UserID); err != nil {
		h.fail(c, "account deletion failed", err)
		return
	}

	response.OK(c, http.StatusOK, "Account deleted", "Account deleted successfully")
}

// UploadAvatar stores the multipart file under the avatar field.
func (h *User) UploadAvatar(c *gin.Context) {
	identity, ok := callerIdentity(c, h.contextManager)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile(avatarField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, "avatar body over limit", model.NewAuthError(model.KindInvalidArgument,
				fmt.Sprintf("file too large, maximum size is %d bytes", h.maxUploadBytes), err))
			return
		}
		response.Error(c, http.StatusBadRequest, "avatar file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, "failed to open uploaded file", model.NewAuthError(model.KindInternal, "failed to read upload", err))
		return
	}
	defer file.Close()

	url, err := h.profileService.UploadAvatar(c.Request.Context(), identity.UserID, service.AvatarUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	})
	if err != nil {
		h.fail(c, "avatar upload failed", err)
		return
	}

	response.OK(c, http.StatusOK, url, "Avatar uploaded successfully")
}

// DownloadAvatar streams a stored avatar. It is public so that avatar URLs
// can be used directly in image tags.
func (h *User) DownloadAvatar(c *gin.Context) {
	body, info, err := h.profileService.OpenAvatar(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, "avatar download failed", err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

func (h *User) fail(c *gin.Context, msg string, err error) {
	logFailure(h.logger, "User handler: "+msg, c, err)
	response.FromError(c, err)
}

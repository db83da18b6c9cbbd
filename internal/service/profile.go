package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

const (
	// AvatarURLPrefix is the public path under which avatars are served.
	AvatarURLPrefix = "/uploads/avatars/"
	avatarKeyPrefix = "avatars/"
)

var avatarExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// AvatarUpload is an avatar file received from a client.
type AvatarUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// Profile manages the authenticated user's own account.
type Profile struct {
	users          model.UserStore
	hasher         model.PasswordHasher
	tokens         *TokenService
	storage        model.Storage
	tx             model.Transactor
	events         model.EventPublisher
	logger         *logger.Logger
	avatarMaxBytes int64
	now            func() time.Time
}

func NewProfile(
	users model.UserStore,
	hasher model.PasswordHasher,
	tokens *TokenService,
	storage model.Storage,
	tx model.Transactor,
	events model.EventPublisher,
	logger *logger.Logger,
	avatarMaxBytes int64,
) *Profile {
	return &Profile{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		storage:        storage,
		tx:             tx,
		events:         events,
		logger:         logger,
		avatarMaxBytes: avatarMaxBytes,
		now:            time.Now,
	}
}

func (p *Profile) Get(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, p.userError(userID, "failed to get user", err)
	}
	return user, nil
}

// Update changes name and email. The email must not belong to another user.
func (p *Profile) Update(ctx context.Context, userID uuid.UUID, name, email string) (model.User, error) {
	taken, err := p.users.ExistsByEmailExcept(ctx, email, userID)
	if err != nil {
		return model.User{}, p.userError(userID, "failed to check email", err)
	}
	if taken {
		return model.User{}, model.ErrEmailTaken
	}

	user, err := p.users.UpdateProfile(ctx, userID, name, email, p.now().UTC())
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, p.userError(userID, "failed to update profile", err)
	}

	p.logger.Info("Profile service: profile updated",
		"user_id", userID)
	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
// Existing sessions stay valid.
func (p *Profile) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return p.userError(userID, "failed to get user", err)
	}

	if err := p.hasher.Compare(user.PasswordHash, current); err != nil {
		if errors.Is(err, model.ErrPasswordMismatch) {
			p.logger.Info("Profile service: current password mismatch",
				"user_id", userID)
			return model.ErrInvalidCurrentPassword
		}
		return p.userError(userID, "failed to verify password", err)
	}

	passwordHash, err := p.hasher.Hash(next)
	if err != nil {
		if model.KindOf(err) == model.KindInvalidArgument {
			return err
		}
		return p.userError(userID, "failed to hash password", err)
	}

	if err := p.users.UpdatePasswordHash(ctx, userID, passwordHash, p.now().UTC()); err != nil {
		return p.userError(userID, "failed to update password", err)
	}

	p.logger.Info("Profile service: password changed",
		"user_id", userID)
	publishEvent(ctx, p.events, p.logger, model.EventUserPasswordChanged, user)

	return nil
}

// DeleteAccount revokes all sessions and removes the user. The avatar object
// is removed afterwards on a best effort basis.
func (p *Profile) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return p.userError(userID, "failed to get user", err)
	}

	err = p.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := p.tokens.RevokeAll(ctx, userID); err != nil {
			return err
		}
		if err := p.users.Delete(ctx, userID); err != nil {
			return p.userError(userID, "failed to delete user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if key, ok := avatarKeyFromURL(user.AvatarURL); ok {
		p.deleteObject(ctx, key)
	}

	p.logger.Info("Profile service: account deleted",
		"user_id", userID)
	publishEvent(ctx, p.events, p.logger, model.EventUserDeleted, user)

	return nil
}

// UploadAvatar stores a new avatar and returns its public URL.
func (p *Profile) UploadAvatar(ctx context.Context, userID uuid.UUID, upload AvatarUpload) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(upload.Filename)), ".")
	contentType, ok := avatarExtensions[ext]
	if !ok {
		return "", model.NewAuthError(model.KindInvalidArgument, "invalid file type, only JPG, PNG and GIF are allowed", nil)
	}
	if upload.Size <= 0 {
		return "", model.NewAuthError(model.KindInvalidArgument, "avatar file is empty", nil)
	}
	if upload.Size > p.avatarMaxBytes {
		return "", model.NewAuthError(model.KindInvalidArgument,
			fmt.Sprintf("file too large, maximum size is %d bytes", p.avatarMaxBytes), nil)
	}

	previous, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return "", p.userError(userID, "failed to get user", err)
	}

	name := fmt.Sprintf("%s_%s.%s", userID, uuid.New(), ext)
	key := avatarKeyPrefix + name

	if err := p.storage.Upload(ctx, key, upload.Reader, upload.Size, contentType); err != nil {
		return "", p.userError(userID, "failed to store avatar", err)
	}

	avatarURL := AvatarURLPrefix + name
	if _, err := p.users.UpdateAvatar(ctx, userID, avatarURL, p.now().UTC()); err != nil {
		p.deleteObject(ctx, key)
		return "", p.userError(userID, "failed to update avatar", err)
	}

	if oldKey, ok := avatarKeyFromURL(previous.AvatarURL); ok {
		p.deleteObject(ctx, oldKey)
	}

	p.logger.Info("Profile service: avatar uploaded",
		"user_id", userID,
		"key", key)
	return avatarURL, nil
}

// OpenAvatar streams a stored avatar by its file name.
func (p *Profile) OpenAvatar(ctx context.Context, name string) (io.ReadCloser, model.ObjectInfo, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, model.ObjectInfo{}, model.NewAuthError(model.KindNotFound, "avatar not found", nil)
	}

	body, info, err := p.storage.Download(ctx, avatarKeyPrefix+name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ObjectInfo{}, model.NewAuthError(model.KindNotFound, "avatar not found", err)
		}
		p.logger.Error("Profile service: failed to download avatar",
			"name", name,
			"error", err.Error())
		return nil, model.ObjectInfo{}, model.NewAuthError(model.KindInternal, "failed to download avatar", err)
	}
	return body, info, nil
}

func (p *Profile) deleteObject(ctx context.Context, key string) {
	if err := p.storage.Delete(ctx, key); err != nil {
		p.logger.Warn("Profile service: failed to delete avatar object",
			"key", key,
			"error", err.Error())
	}
}

// userError maps store errors for a user lookup or mutation.
func (p *Profile) userError(userID uuid.UUID, msg string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrUserNotFound
	}
	p.logger.Error("Profile service: "+msg,
		"user_id", userID,
		"error", err.Error())
	return model.NewAuthError(model.KindInternal, msg, err)
}

func avatarKeyFromURL(url *string) (string, bool) {
	if url == nil || !strings.HasPrefix(*url, AvatarURLPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(*url, AvatarURLPrefix)
	if name == "" {
		return "", false
	}
	return avatarKeyPrefix + name, true
}

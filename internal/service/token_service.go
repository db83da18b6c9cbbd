package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// Session is a user together with a freshly issued token pair.
type Session struct {
	User   model.User
	Tokens model.TokenPair
}

// TokenService issues, verifies, rotates and revokes tokens. It composes the
// TokenManager with the SessionStore that tracks refresh token hashes.
type TokenService struct {
	manager model.TokenManager
	store   model.SessionStore
	users   model.UserStore
	tx      model.Transactor
	logger  *logger.Logger
	now     func() time.Time
}

func NewTokenService(
	manager model.TokenManager,
	store model.SessionStore,
	users model.UserStore,
	tx model.Transactor,
	logger *logger.Logger,
) *TokenService {
	return &TokenService{
		manager: manager,
		store:   store,
		users:   users,
		tx:      tx,
		logger:  logger,
		now:     time.Now,
	}
}

// Issue signs a new access and refresh token for user and records the
// refresh token hash.
func (s *TokenService) Issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("Token service: failed to sign access token",
			"user_id", user.ID,
			"error", err.Error())
		return model.TokenPair{}, model.NewAuthError(model.KindInternal, "failed to issue access token", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("Token service: failed to sign refresh token",
			"user_id", user.ID,
			"error", err.Error())
		return model.TokenPair{}, model.NewAuthError(model.KindInternal, "failed to issue refresh token", err)
	}

	now := s.now().UTC()
	record := model.RefreshTokenRecord{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashRefresh(refresh),
		ExpiresAt: now.Add(model.RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := s.store.Insert(ctx, record); err != nil {
		s.logger.Error("Token service: failed to persist refresh token",
			"user_id", user.ID,
			"error", err.Error())
		return model.TokenPair{}, model.NewAuthError(model.KindInternal, "failed to persist refresh token", err)
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(model.AccessTokenTTL / time.Second),
	}, nil
}

// VerifyAccess checks an access token without touching storage.
func (s *TokenService) VerifyAccess(_ context.Context, token string) (model.AccessClaims, error) {
	claims, err := s.manager.ParseAccessToken(token)
	if err != nil {
		return model.AccessClaims{}, model.NewAuthError(model.KindInvalidToken, model.ErrInvalidToken.Message, err)
	}
	return claims, nil
}

// Rotate exchanges a refresh token for a new pair. The presented token is
// consumed: a second rotation of the same token fails.
func (s *TokenService) Rotate(ctx context.Context, refresh string) (model.TokenPair, error) {
	session, err := s.RotateSession(ctx, refresh)
	if err != nil {
		return model.TokenPair{}, err
	}
	return session.Tokens, nil
}

// RotateSession is Rotate that also returns the owning user.
func (s *TokenService) RotateSession(ctx context.Context, refresh string) (Session, error) {
	userID, err := s.manager.ParseRefreshToken(refresh)
	if err != nil {
		s.logger.Debug("Token service: refresh token rejected",
			"error", err.Error())
		return Session{}, model.NewAuthError(model.KindInvalidToken, model.ErrInvalidRefreshToken.Message, err)
	}

	tokenHash := hashRefresh(refresh)

	var session Session
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.store.FindValidByHash(ctx, tokenHash, s.now().UTC())
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.ErrInvalidRefreshToken
			}
			return model.NewAuthError(model.KindInternal, "failed to look up refresh token", err)
		}
		if record.UserID != userID {
			return model.ErrInvalidRefreshToken
		}

		user, err := s.users.GetByID(ctx, record.UserID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.ErrUserNotFound
			}
			return model.NewAuthError(model.KindInternal, "failed to load user", err)
		}

		deleted, err := s.store.DeleteByHash(ctx, tokenHash)
		if err != nil {
			return model.NewAuthError(model.KindInternal, "failed to consume refresh token", err)
		}
		if deleted == 0 {
			return model.ErrInvalidRefreshToken
		}

		tokens, err := s.Issue(ctx, user)
		if err != nil {
			return err
		}

		session = Session{User: user, Tokens: tokens}
		return nil
	})
	if err != nil {
		if model.KindOf(err) == model.KindInternal {
			s.logger.Error("Token service: failed to rotate refresh token",
				"user_id", userID,
				"error", err.Error())
		} else {
			s.logger.Info("Token service: refresh token rotation refused",
				"user_id", userID,
				"reason", err.Error())
		}
		return Session{}, err
	}

	return session, nil
}

// RevokeAll deletes every refresh token of userID. Revoking a user without
// tokens is not an error.
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		s.logger.Error("Token service: failed to revoke refresh tokens",
			"user_id", userID,
			"error", err.Error())
		return model.NewAuthError(model.KindInternal, "failed to revoke refresh tokens", fmt.Errorf("revoke all: %w", err))
	}

	s.logger.Debug("Token service: revoked refresh tokens",
		"user_id", userID,
		"count", n)
	return nil
}

func hashRefresh(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

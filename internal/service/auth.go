package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// dummyPassword is hashed once and compared against when a login names an
// unknown email so that both failure paths cost one bcrypt comparison.
const dummyPassword = "authflow-dummy-password"

// RegisterInput holds the validated registration request.
type RegisterInput struct {
	Email         string
	Password      string
	TermsAccepted bool
}

type Auth struct {
	users  model.UserStore
	hasher model.PasswordHasher
	tokens *TokenService
	tx     model.Transactor
	events model.EventPublisher
	logger *logger.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	users model.UserStore,
	hasher model.PasswordHasher,
	tokens *TokenService,
	tx model.Transactor,
	events model.EventPublisher,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		tx:     tx,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a user and issues its first token pair.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (Session, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", in.Email)

	_, err := a.users.GetByEmail(ctx, in.Email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", in.Email)
		return Session{}, model.ErrUserExists
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", in.Email,
			"error", err.Error())
		return Session{}, model.NewAuthError(model.KindInternal, "failed to get user by email", err)
	}

	passwordHash, err := a.hasher.Hash(in.Password)
	if err != nil {
		if model.KindOf(err) == model.KindInvalidArgument {
			return Session{}, err
		}
		a.logger.Error("Auth service: failed to hash password",
			"email", in.Email,
			"error", err.Error())
		return Session{}, model.NewAuthError(model.KindInternal, "failed to hash password", err)
	}

	now := a.now().UTC()
	var session Session
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := a.users.Create(ctx, model.User{
			ID:            uuid.New(),
			Email:         in.Email,
			PasswordHash:  passwordHash,
			Role:          model.RoleUser,
			TermsAccepted: in.TermsAccepted,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			if errors.Is(err, model.ErrAlreadyExists) {
				return model.ErrUserExists
			}
			return model.NewAuthError(model.KindInternal, "failed to create user", err)
		}

		tokens, err := a.tokens.Issue(ctx, user)
		if err != nil {
			return err
		}

		session = Session{User: user, Tokens: tokens}
		return nil
	})
	if err != nil {
		if model.KindOf(err) == model.KindAlreadyExists {
			a.logger.Info("Auth service: user already exists",
				"email", in.Email)
		} else {
			a.logger.Error("Auth service: failed to register user",
				"email", in.Email,
				"error", err.Error())
		}
		return Session{}, err
	}

	a.logger.Info("Auth service: user registered",
		"user_id", session.User.ID)
	publishEvent(ctx, a.events, a.logger, model.EventUserRegistered, session.User)

	return session, nil
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password produce the same error.
func (a *Auth) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.compareDummy(password)
			a.logger.Info("Auth service: login failed",
				"email", email)
			return Session{}, model.ErrInvalidCredentials
		}
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return Session{}, model.NewAuthError(model.KindInternal, "failed to get user by email", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, model.ErrPasswordMismatch) {
			a.logger.Info("Auth service: login failed",
				"email", email)
			return Session{}, model.ErrInvalidCredentials
		}
		a.logger.Error("Auth service: failed to verify password",
			"user_id", user.ID,
			"error", err.Error())
		return Session{}, model.NewAuthError(model.KindInternal, "failed to verify password", err)
	}

	now := a.now().UTC()
	var tokens model.TokenPair
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := a.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.ErrUserNotFound
			}
			return model.NewAuthError(model.KindInternal, "failed to update last login", err)
		}

		tokens, err = a.tokens.Issue(ctx, user)
		return err
	})
	if err != nil {
		a.logger.Error("Auth service: failed to complete login",
			"user_id", user.ID,
			"error", err.Error())
		return Session{}, err
	}
	user.LastLogin = &now

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)
	publishEvent(ctx, a.events, a.logger, model.EventUserLoggedIn, user)

	return Session{User: user, Tokens: tokens}, nil
}

// Logout revokes every refresh token of the user.
func (a *Auth) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.tokens.RevokeAll(ctx, userID); err != nil {
		return err
	}

	a.logger.Info("Auth service: user logged out",
		"user_id", userID)
	publishEvent(ctx, a.events, a.logger, model.EventUserLoggedOut, model.User{ID: userID})

	return nil
}

// Refresh rotates a refresh token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	return a.tokens.RotateSession(ctx, refreshToken)
}

// Me returns the current user.
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrUserNotFound
		}
		a.logger.Error("Auth service: failed to get user",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, model.NewAuthError(model.KindInternal, "failed to get user", err)
	}
	return user, nil
}

// VerifyAccess exposes stateless access token verification to the transport.
func (a *Auth) VerifyAccess(ctx context.Context, token string) (model.AccessClaims, error) {
	return a.tokens.VerifyAccess(ctx, token)
}

func (a *Auth) compareDummy(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash != "" {
		_ = a.hasher.Compare(a.dummyHash, password)
	}
}

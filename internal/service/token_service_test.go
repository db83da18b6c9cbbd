package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authflow-server/internal/mocks"
	"github.com/dtroode/authflow-server/internal/model"
	"github.com/dtroode/authflow-server/internal/testutil"
)

type tokenDeps struct {
	manager *mocks.TokenManager
	store   *mocks.SessionStore
	users   *mocks.UserStore
	tx      *testutil.PassthroughTx
	svc     *TokenService
}

func newTokenDeps(t *testing.T) tokenDeps {
	d := tokenDeps{
		manager: mocks.NewTokenManager(t),
		store:   mocks.NewSessionStore(t),
		users:   mocks.NewUserStore(t),
		tx:      &testutil.PassthroughTx{},
	}
	d.svc = NewTokenService(d.manager, d.store, d.users, d.tx, testutil.MakeNoopLogger())
	return d
}

func sha(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func TestTokenService_Issue(t *testing.T) {
	ctx := context.Background()
	user := testutil.MakeUser("alice@example.com", "hash")
	d := newTokenDeps(t)

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	d.svc.now = func() time.Time { return fixed }

	d.manager.On("GenerateAccessToken", user).Return("access", nil).Once()
	d.manager.On("GenerateRefreshToken", user.ID).Return("refresh", nil).Once()
	d.store.On("Insert", ctx, mock.MatchedBy(func(r model.RefreshTokenRecord) bool {
		return r.UserID == user.ID &&
			r.TokenHash == sha("refresh") &&
			r.ExpiresAt.Equal(fixed.Add(7*24*time.Hour)) &&
			r.ID != uuid.Nil
	})).Return(nil).Once()

	pair, err := d.svc.Issue(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)
	assert.Equal(t, int64(600), pair.ExpiresIn)
}

func TestTokenService_Issue_NeverStoresRawToken(t *testing.T) {
	ctx := context.Background()
	user := testutil.MakeUser("alice@example.com", "hash")
	d := newTokenDeps(t)

	d.manager.On("GenerateAccessToken", user).Return("access", nil).Once()
	d.manager.On("GenerateRefreshToken", user.ID).Return("raw-refresh", nil).Once()
	d.store.On("Insert", ctx, mock.MatchedBy(func(r model.RefreshTokenRecord) bool {
		return r.TokenHash != "raw-refresh" && len(r.TokenHash) == 64
	})).Return(nil).Once()

	_, err := d.svc.Issue(ctx, user)
	require.NoError(t, err)
}

func TestTokenService_Issue_Failures(t *testing.T) {
	ctx := context.Background()
	user := testutil.MakeUser("alice@example.com", "hash")

	t.Run("sign access", func(t *testing.T) {
		d := newTokenDeps(t)
		d.manager.On("GenerateAccessToken", user).Return("", assert.AnError).Once()

		_, err := d.svc.Issue(ctx, user)
		require.Error(t, err)
		assert.Equal(t, model.KindInternal, model.KindOf(err))
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("sign refresh", func(t *testing.T) {
		d := newTokenDeps(t)
		d.manager.On("GenerateAccessToken", user).Return("access", nil).Once()
		d.manager.On("GenerateRefreshToken", user.ID).Return("", assert.AnError).Once()

		_, err := d.svc.Issue(ctx, user)
		assert.Equal(t, model.KindInternal, model.KindOf(err))
	})

	t.Run("persist", func(t *testing.T) {
		d := newTokenDeps(t)
		d.manager.On("GenerateAccessToken", user).Return("access", nil).Once()
		d.manager.On("GenerateRefreshToken", user.ID).Return("refresh", nil).Once()
		d.store.On("Insert", ctx, mock.Anything).Return(assert.AnError).Once()

		_, err := d.svc.Issue(ctx, user)
		assert.Equal(t, model.KindInternal, model.KindOf(err))
	})
}

func TestTokenService_VerifyAccess(t *testing.T) {
	ctx := context.Background()
	d := newTokenDeps(t)
	claims := model.AccessClaims{UserID: uuid.New(), Email: "a@example.com", Role: model.RoleUser}

	d.manager.On("ParseAccessToken", "good").Return(claims, nil).Once()
	d.manager.On("ParseAccessToken", "bad").Return(model.AccessClaims{}, assert.AnError).Once()

	got, err := d.svc.VerifyAccess(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	_, err = d.svc.VerifyAccess(ctx, "bad")
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_Rotate_Success(t *testing.T) {
	ctx := context.Background()
	user := testutil.MakeUser("alice@example.com", "hash")
	d := newTokenDeps(t)
	presented := "refresh-old"

	d.manager.On("ParseRefreshToken", presented).Return(user.ID, nil).Once()
	d.store.On("FindValidByHash", ctx, sha(presented), mock.AnythingOfType("time.Time")).
		Return(model.RefreshTokenRecord{ID: uuid.New(), UserID: user.ID, TokenHash: sha(presented)}, nil).Once()
	d.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	d.store.On("DeleteByHash", ctx, sha(presented)).Return(int64(1), nil).Once()
	d.manager.On("GenerateAccessToken", user).Return("access-new", nil).Once()
	d.manager.On("GenerateRefreshToken", user.ID).Return("refresh-new", nil).Once()
	d.store.On("Insert", ctx, mock.MatchedBy(func(r model.RefreshTokenRecord) bool {
		return r.TokenHash == sha("refresh-new")
	})).Return(nil).Once()

	pair, err := d.svc.Rotate(ctx, presented)
	require.NoError(t, err)
	assert.Equal(t, "access-new", pair.AccessToken)
	assert.Equal(t, "refresh-new", pair.RefreshToken)
	assert.Equal(t, int64(1), d.tx.Calls.Load())
}

func TestTokenService_Rotate_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	d := newTokenDeps(t)

	d.manager.On("ParseRefreshToken", "garbage").Return(uuid.Nil, assert.AnError).Once()

	_, err := d.svc.Rotate(ctx, "garbage")
	require.ErrorIs(t, err, model.ErrInvalidToken)
	assert.Equal(t, int64(0), d.tx.Calls.Load())
}

func TestTokenService_Rotate_UnknownHash(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	d := newTokenDeps(t)

	d.manager.On("ParseRefreshToken", "revoked").Return(userID, nil).Once()
	d.store.On("FindValidByHash", ctx, sha("revoked"), mock.Anything).
		Return(model.RefreshTokenRecord{}, model.ErrNotFound).Once()

	_, err := d.svc.Rotate(ctx, "revoked")
	require.ErrorIs(t, err, model.ErrInvalidToken)
	assert.Equal(t, "invalid refresh token", model.PublicMessage(err))
}

func TestTokenService_Rotate_UserVanished(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	d := newTokenDeps(t)

	d.manager.On("ParseRefreshToken", "refresh").Return(userID, nil).Once()
	d.store.On("FindValidByHash", ctx, sha("refresh"), mock.Anything).
		Return(model.RefreshTokenRecord{UserID: userID}, nil).Once()
	d.users.On("GetByID", ctx, userID).Return(model.User{}, model.ErrNotFound).Once()

	_, err := d.svc.Rotate(ctx, "refresh")
	require.ErrorIs(t, err, model.ErrUserNotFound)
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}

func TestTokenService_Rotate_LostRace(t *testing.T) {
	ctx := context.Background()
	user := testutil.MakeUser("alice@example.com", "hash")
	d := newTokenDeps(t)

	d.manager.On("ParseRefreshToken", "refresh").Return(user.ID, nil).Once()
	d.store.On("FindValidByHash", ctx, sha("refresh"), mock.Anything).
		Return(model.RefreshTokenRecord{UserID: user.ID}, nil).Once()
	d.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	d.store.On("DeleteByHash", ctx, sha("refresh")).Return(int64(0), nil).Once()

	_, err := d.svc.Rotate(ctx, "refresh")
	require.ErrorIs(t, err, model.ErrInvalidToken)
	d.manager.AssertNotCalled(t, "GenerateAccessToken", mock.Anything)
}

func TestTokenService_Rotate_SubjectMismatch(t *testing.T) {
	ctx := context.Background()
	d := newTokenDeps(t)

	d.manager.On("ParseRefreshToken", "refresh").Return(uuid.New(), nil).Once()
	d.store.On("FindValidByHash", ctx, sha("refresh"), mock.Anything).
		Return(model.RefreshTokenRecord{UserID: uuid.New()}, nil).Once()

	_, err := d.svc.Rotate(ctx, "refresh")
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_Rotate_StoreFailure(t *testing.T) {
	ctx := context.Background()
	d := newTokenDeps(t)
	userID := uuid.New()

	d.manager.On("ParseRefreshToken", "refresh").Return(userID, nil).Once()
	d.store.On("FindValidByHash", ctx, sha("refresh"), mock.Anything).
		Return(model.RefreshTokenRecord{}, assert.AnError).Once()

	_, err := d.svc.Rotate(ctx, "refresh")
	require.Error(t, err)
	assert.Equal(t, model.KindInternal, model.KindOf(err))
}

func TestTokenService_Rotate_PropagatesTxError(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tx := mocks.NewTransactor(t)
	manager := mocks.NewTokenManager(t)
	svc := NewTokenService(manager, mocks.NewSessionStore(t), mocks.NewUserStore(t), tx, testutil.MakeNoopLogger())

	manager.On("ParseRefreshToken", "refresh").Return(userID, nil).Once()
	tx.On("WithinTx", ctx, mock.Anything).Return(assert.AnError).Once()

	_, err := svc.Rotate(ctx, "refresh")
	require.ErrorIs(t, err, assert.AnError)
}

func TestTokenService_RevokeAll(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	d := newTokenDeps(t)

	d.store.On("DeleteAllForUser", ctx, userID).Return(int64(2), nil).Once()
	d.store.On("DeleteAllForUser", ctx, userID).Return(int64(0), nil).Once()
	d.store.On("DeleteAllForUser", ctx, userID).Return(int64(0), assert.AnError).Once()

	require.NoError(t, d.svc.RevokeAll(ctx, userID))
	require.NoError(t, d.svc.RevokeAll(ctx, userID))

	err := d.svc.RevokeAll(ctx, userID)
	require.Error(t, err)
	assert.Equal(t, model.KindInternal, model.KindOf(err))
}

func TestHashRefresh(t *testing.T) {
	assert.Equal(t, sha("abc"), hashRefresh("abc"))
	assert.Len(t, hashRefresh("abc"), 64)
	assert.NotEqual(t, hashRefresh("abc"), hashRefresh("abd"))
}

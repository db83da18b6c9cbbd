package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/authflow-server/internal/model"
)

var _ model.SessionStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db DBTX
}

func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Insert(ctx context.Context, record model.RefreshTokenRecord) error {
	const query = `
        INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := conn(ctx, r.db).Exec(ctx, query,
		record.ID, record.UserID, record.TokenHash, record.ExpiresAt, record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindValidByHash(ctx context.Context, tokenHash string, now time.Time) (model.RefreshTokenRecord, error) {
	const query = `
        SELECT id, user_id, token_hash, expires_at, created_at
        FROM refresh_tokens WHERE token_hash = $1 AND expires_at > $2
    `
	var rt model.RefreshTokenRecord
	err := conn(ctx, r.db).QueryRow(ctx, query, tokenHash, now).Scan(
		&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshTokenRecord{}, model.ErrNotFound
		}
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to find refresh token by hash: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE token_hash = $1`

	tag, err := conn(ctx, r.db).Exec(ctx, query, tokenHash)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`

	tag, err := conn(ctx, r.db).Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh tokens for user: %w", err)
	}
	return tag.RowsAffected(), nil
}

package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

var passwordResetColumns = []string{
	"id", "user_id", "user_type", "email", "reset_type", "secret_hash", "attempts",
	"expires_at", "is_used", "is_verified", "verified_at", "grant_used_at", "created_at",
}

// PasswordResetRepository manages OTP and reset-link records
type PasswordResetRepository struct {
	db     *db.PostgresDB
	logger zerolog.Logger
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(database *db.PostgresDB, log zerolog.Logger) *PasswordResetRepository {
	return &PasswordResetRepository{db: database, logger: log.With().Str("repository", "password_resets").Logger()}
}

func scanPasswordReset(row pgx.Row) (*models.PasswordReset, error) {
	p := &models.PasswordReset{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.UserType, &p.Email, &p.ResetType, &p.SecretHash, &p.Attempts,
		&p.ExpiresAt, &p.IsUsed, &p.IsVerified, &p.VerifiedAt, &p.GrantUsedAt, &p.CreatedAt,
	)
	return p, err
}

// ReplaceActive invalidates every unused record of the same user and inserts rec,
// both in one transaction, so at most one live record exists per user.
func (r *PasswordResetRepository) ReplaceActive(ctx context.Context, rec *models.PasswordReset) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invalidateSQL, invalidateArgs, err := psql.Update("password_resets").
			Set("is_used", true).
			Where(squirrel.Eq{"user_id": rec.UserID, "user_type": rec.UserType, "is_used": false}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build invalidate query: %w", err)
		}

		tag, err := tx.Exec(ctx, invalidateSQL, invalidateArgs...)
		if err != nil {
			return fmt.Errorf("error invalidating previous resets: %w", err)
		}
		if n := tag.RowsAffected(); n > 0 {
			r.logger.Debug().Int64("userID", rec.UserID).Int64("invalidated", n).Msg("Invalidated previous reset records")
		}

		insertSQL, insertArgs, err := psql.Insert("password_resets").
			Columns("user_id", "user_type", "email", "reset_type", "secret_hash", "attempts", "expires_at", "created_at").
			Values(rec.UserID, rec.UserType, rec.Email, rec.ResetType, rec.SecretHash, 0, rec.ExpiresAt, rec.CreatedAt).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert reset query: %w", err)
		}

		if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&rec.ID); err != nil {
			return fmt.Errorf("error creating reset record: %w", err)
		}
		return nil
	})
}

// ConsumeAttempt atomically increments the attempt counter of the user's live OTP
// record and returns the record with the new count. A record is live while it is
// unused, unexpired and below maxAttempts, so concurrent attempts can never push
// the counter past the cap. Returns apperrors.ErrResourceNotFound when no live record exists.
func (r *PasswordResetRepository) ConsumeAttempt(ctx context.Context, userID int64, userType models.UserType, now time.Time, maxAttempts int) (*models.PasswordReset, error) {
	live := psql.Select("id").
		From("password_resets").
		Where(squirrel.Eq{"user_id": userID, "user_type": userType, "reset_type": models.ResetTypeOTP, "is_used": false}).
		Where(squirrel.Gt{"expires_at": now}).
		Where(squirrel.Lt{"attempts": maxAttempts}).
		OrderBy("created_at DESC").
		Limit(1).
		Suffix("FOR UPDATE")

	sql, args, err := psql.Update("password_resets").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Where(squirrel.Expr("id = (?)", live)).
		Where(squirrel.Lt{"attempts": maxAttempts}).
		Suffix("RETURNING " + strings.Join(passwordResetColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build consume attempt query: %w", err)
	}

	rec, err := scanPasswordReset(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error consuming attempt: %w", err)
	}
	return rec, nil
}

// MarkVerified flips an unused record to verified and used, and keeps it until
// retainUntil so the reset grant can still be redeemed. It reports false when
// another request consumed the record first.
func (r *PasswordResetRepository) MarkVerified(ctx context.Context, id int64, now, retainUntil time.Time) (bool, error) {
	sql, args, err := psql.Update("password_resets").
		Set("is_verified", true).
		Set("is_used", true).
		Set("verified_at", now).
		Set("expires_at", squirrel.Expr("GREATEST(expires_at, ?)", retainUntil)).
		Where(squirrel.Eq{"id": id, "is_used": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build mark verified query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error marking reset verified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ConsumeGrant records that the reset grant of a verified OTP record was redeemed.
// It reports false when the grant was already redeemed or the record is gone.
func (r *PasswordResetRepository) ConsumeGrant(ctx context.Context, id, userID int64, now time.Time) (bool, error) {
	sql, args, err := psql.Update("password_resets").
		Set("grant_used_at", now).
		Where(squirrel.Eq{"id": id, "user_id": userID, "is_verified": true, "grant_used_at": nil}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build consume grant query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error consuming reset grant: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ConsumeToken marks the live TOKEN record with the given hash used and returns it.
// Returns apperrors.ErrResourceNotFound when the token is unknown, used or expired.
func (r *PasswordResetRepository) ConsumeToken(ctx context.Context, secretHash string, now time.Time) (*models.PasswordReset, error) {
	sql, args, err := psql.Update("password_resets").
		Set("is_verified", true).
		Set("is_used", true).
		Set("verified_at", now).
		Where(squirrel.Eq{"secret_hash": secretHash, "reset_type": models.ResetTypeToken, "is_used": false}).
		Where(squirrel.Gt{"expires_at": now}).
		Suffix("RETURNING " + strings.Join(passwordResetColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build consume token query: %w", err)
	}

	rec, err := scanPasswordReset(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error consuming reset token: %w", err)
	}
	return rec, nil
}

// DeleteExpired purges records whose expiry has passed
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := psql.Delete("password_resets").Where(squirrel.LtOrEq{"expires_at": now}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired resets query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired resets: %w", err)
	}
	return tag.RowsAffected(), nil
}

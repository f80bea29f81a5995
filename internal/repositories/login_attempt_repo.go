package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginAttemptRepository is the attempt-store adapter: append-only writes,
// windowed reads ordered ascending by attempt time.
type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: db.Pool}
}

// Record appends a login attempt.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (
			username, source_ip, user_agent, client_fingerprint,
			password_fingerprint, pattern_score, success, failure_reason,
			attempt_time, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		attempt.Username,
		attempt.SourceIP,
		attempt.UserAgent,
		attempt.ClientFingerprint,
		attempt.PasswordFingerprint,
		attempt.PatternScore,
		attempt.Success,
		attempt.FailureReason,
		attempt.AttemptTime,
		attempt.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", database.MapPostgresError(err))
	}

	return nil
}

// RecentBySource returns attempts from one source IP since the given time,
// ascending by attempt time.
func (r *LoginAttemptRepository) RecentBySource(ctx context.Context, sourceIP string, since time.Time) ([]models.LoginAttempt, error) {
	query := `
		SELECT id, username, source_ip, user_agent, client_fingerprint,
		       password_fingerprint, pattern_score, success, failure_reason,
		       attempt_time, expires_at
		FROM login_attempts
		WHERE source_ip = $1 AND attempt_time >= $2
		ORDER BY attempt_time ASC
	`

	rows, err := r.pool.Query(ctx, query, sourceIP, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts by source: %w", database.MapPostgresError(err))
	}

	return scanAttemptRows(rows)
}

// RecentAll returns up to limit attempts across all sources since the given
// time, ascending by attempt time. Used by the scheduler to discover active
// sources.
func (r *LoginAttemptRepository) RecentAll(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error) {
	// Take the newest rows, then flip back to ascending order
	query := `
		SELECT id, username, source_ip, user_agent, client_fingerprint,
		       password_fingerprint, pattern_score, success, failure_reason,
		       attempt_time, expires_at
		FROM (
			SELECT id, username, source_ip, user_agent, client_fingerprint,
			       password_fingerprint, pattern_score, success, failure_reason,
			       attempt_time, expires_at
			FROM login_attempts
			WHERE attempt_time >= $1
			ORDER BY attempt_time DESC
			LIMIT $2
		) recent
		ORDER BY attempt_time ASC
	`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent attempts: %w", database.MapPostgresError(err))
	}

	return scanAttemptRows(rows)
}

// DeleteExpired removes attempts past their retention time and returns the
// number of rows deleted.
func (r *LoginAttemptRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM login_attempts WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired attempts: %w", database.MapPostgresError(err))
	}
	return tag.RowsAffected(), nil
}

func scanAttemptRow(scanner rowScanner) (*models.LoginAttempt, error) {
	var attempt models.LoginAttempt

	err := scanner.Scan(
		&attempt.ID, &attempt.Username, &attempt.SourceIP, &attempt.UserAgent,
		&attempt.ClientFingerprint, &attempt.PasswordFingerprint,
		&attempt.PatternScore, &attempt.Success, &attempt.FailureReason,
		&attempt.AttemptTime, &attempt.ExpiresAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &attempt, nil
}

func scanAttemptRows(rows pgx.Rows) ([]models.LoginAttempt, error) {
	defer rows.Close()

	attempts := make([]models.LoginAttempt, 0)

	for rows.Next() {
		attempt, err := scanAttemptRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		attempts = append(attempts, *attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempt rows: %w", err)
	}

	return attempts, nil
}

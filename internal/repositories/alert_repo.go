package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlertRepository is the alert-store adapter. Alerts are written once and
// never updated.
type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{pool: db.Pool}
}

// Insert persists a new alert. The ID is assigned here if unset.
func (r *AlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}

	query := `
		INSERT INTO alerts (id, signature_type, source_ip, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		alert.ID, alert.SignatureType, alert.SourceIP, alert.Details, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", database.MapPostgresError(err))
	}

	return nil
}

// Recent returns the newest alerts, newest first.
func (r *AlertRepository) Recent(ctx context.Context, limit int) ([]models.Alert, error) {
	query := `
		SELECT id, signature_type, source_ip, details, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", database.MapPostgresError(err))
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)

	for rows.Next() {
		var alert models.Alert
		if err := rows.Scan(
			&alert.ID, &alert.SignatureType, &alert.SourceIP,
			&alert.Details, &alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", database.MapPostgresError(err))
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}

	return alerts, nil
}

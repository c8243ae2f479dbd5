package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

// AuthorizationLogFilter narrows List results. Zero values mean no filter.
type AuthorizationLogFilter struct {
	Claimant   string
	Authorized *bool
	Limit      int
	Offset     int
}

type AuthorizationLogRepository struct {
	pool PgxPool
}

func NewAuthorizationLogRepository(pool PgxPool) *AuthorizationLogRepository {
	return &AuthorizationLogRepository{pool: pool}
}

func (r *AuthorizationLogRepository) Create(ctx context.Context, decision *domain.AuthorizationDecision) error {
	query := `
		INSERT INTO authorization_logs (id, claimant, recognized_as, confidence, outcome, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if decision.ID == uuid.Nil {
		decision.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		decision.ID,
		decision.Claimant,
		decision.RecognizedAs,
		decision.Confidence,
		decision.Outcome,
		decision.Reason,
		decision.CreatedAt,
	).Scan(&decision.CreatedAt)

	if err != nil {
		return fmt.Errorf("create authorization log: %w", err)
	}

	return nil
}

func (r *AuthorizationLogRepository) List(ctx context.Context, filter AuthorizationLogFilter) ([]domain.AuthorizationDecision, error) {
	query := `
		SELECT id, claimant, recognized_as, confidence, outcome, reason, created_at
		FROM authorization_logs
		WHERE ($1 = '' OR claimant = $1)
		  AND ($2::boolean IS NULL OR (outcome = 'Authorized') = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, query, filter.Claimant, filter.Authorized, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list authorization logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.AuthorizationDecision, 0)
	for rows.Next() {
		var d domain.AuthorizationDecision
		if err := rows.Scan(
			&d.ID,
			&d.Claimant,
			&d.RecognizedAs,
			&d.Confidence,
			&d.Outcome,
			&d.Reason,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan authorization log: %w", err)
		}
		logs = append(logs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list authorization logs: %w", err)
	}

	return logs, nil
}

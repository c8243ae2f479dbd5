package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories need. pgxmock
// satisfies it in tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UserRepositoryInterface defines operations for the user directory
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthorizationLogRepositoryInterface defines operations for the decision log
type AuthorizationLogRepositoryInterface interface {
	Create(ctx context.Context, decision *domain.AuthorizationDecision) error
	List(ctx context.Context, filter AuthorizationLogFilter) ([]domain.AuthorizationDecision, error)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		user      *domain.User
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "creates user successfully",
			user: &domain.User{
				Username: "jane",
				Email:    "jane@example.com",
				Role:     domain.RoleUser,
			},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO users").
					WithArgs(pgxmock.AnyArg(), "jane", "jane@example.com", domain.RoleUser).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
			},
		},
		{
			name: "defaults empty role to user",
			user: &domain.User{
				Username: "joe",
				Email:    "joe@example.com",
			},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO users").
					WithArgs(pgxmock.AnyArg(), "joe", "joe@example.com", domain.RoleUser).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
			},
		},
		{
			name: "maps unique violation to user exists",
			user: &domain.User{
				Username: "jane",
				Email:    "jane@example.com",
				Role:     domain.RoleUser,
			},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO users").
					WithArgs(pgxmock.AnyArg(), "jane", "jane@example.com", domain.RoleUser).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
			},
			wantErr: domain.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewUserRepository(mock)
			err = repo.Create(context.Background(), tt.user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, tt.user.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Now()

	tests := []struct {
		name      string
		username  string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.User
		wantErr   error
	}{
		{
			name:     "returns user",
			username: "jane",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT id, username, email, role, created_at").
					WithArgs("jane").
					WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "role", "created_at"}).
						AddRow(userID, "jane", "jane@example.com", domain.RoleUser, createdAt))
			},
			want: &domain.User{
				ID:        userID,
				Username:  "jane",
				Email:     "jane@example.com",
				Role:      domain.RoleUser,
				CreatedAt: createdAt,
			},
		},
		{
			name:     "maps no rows to not found",
			username: "ghost",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT id, username, email, role, created_at").
					WithArgs("ghost").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewUserRepository(mock)
			got, err := repo.GetByUsername(context.Background(), tt.username)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Delete(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "deletes user",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("DELETE FROM users").
					WithArgs(userID).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "missing user returns not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("DELETE FROM users").
					WithArgs(userID).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewUserRepository(mock)
			err = repo.Delete(context.Background(), userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAuthorizationLogRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	decision := &domain.AuthorizationDecision{
		Claimant:     "jane",
		RecognizedAs: "jane",
		Confidence:   87.5,
		Outcome:      domain.DecisionAuthorized,
		Reason:       domain.ReasonAuthorized,
		CreatedAt:    now,
	}

	mock.ExpectQuery("INSERT INTO authorization_logs").
		WithArgs(pgxmock.AnyArg(), "jane", "jane", 87.5, domain.DecisionAuthorized, domain.ReasonAuthorized, now).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	repo := NewAuthorizationLogRepository(mock)
	require.NoError(t, repo.Create(context.Background(), decision))
	assert.NotEqual(t, uuid.Nil, decision.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationLogRepository_List(t *testing.T) {
	entryID := uuid.New()
	createdAt := time.Now()
	authorized := true

	tests := []struct {
		name      string
		filter    AuthorizationLogFilter
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantLen   int
	}{
		{
			name:   "lists with default limit",
			filter: AuthorizationLogFilter{},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT id, claimant, recognized_as, confidence, outcome, reason, created_at").
					WithArgs("", (*bool)(nil), 100, 0).
					WillReturnRows(pgxmock.NewRows([]string{"id", "claimant", "recognized_as", "confidence", "outcome", "reason", "created_at"}).
						AddRow(entryID, "jane", "jane", 87.5, domain.DecisionAuthorized, domain.ReasonAuthorized, createdAt))
			},
			wantLen: 1,
		},
		{
			name: "applies claimant and outcome filters",
			filter: AuthorizationLogFilter{
				Claimant:   "joe",
				Authorized: &authorized,
				Limit:      10,
			},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT id, claimant, recognized_as, confidence, outcome, reason, created_at").
					WithArgs("joe", &authorized, 10, 0).
					WillReturnRows(pgxmock.NewRows([]string{"id", "claimant", "recognized_as", "confidence", "outcome", "reason", "created_at"}))
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewAuthorizationLogRepository(mock)
			logs, err := repo.List(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Len(t, logs, tt.wantLen)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

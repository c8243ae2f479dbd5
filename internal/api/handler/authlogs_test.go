package handler

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/shield/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/repository"
)

type mockAuthLogRepo struct {
	mock.Mock
}

func (m *mockAuthLogRepo) Create(ctx context.Context, decision *domain.AuthorizationDecision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

func (m *mockAuthLogRepo) List(ctx context.Context, filter repository.AuthorizationLogFilter) ([]domain.AuthorizationDecision, error) {
	args := m.Called(ctx, filter)
	if logs := args.Get(0); logs != nil {
		return logs.([]domain.AuthorizationDecision), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repository.AuthorizationLogRepositoryInterface = (*mockAuthLogRepo)(nil)

func newAuthLogsApp(repo *mockAuthLogRepo) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(slog.Default()),
	})
	app.Get("/authorization-logs", NewAuthorizationLogsHandler(repo, slog.Default()).List)
	return app
}

func TestAuthorizationLogsHandler_List(t *testing.T) {
	authorized := true

	tests := []struct {
		name       string
		target     string
		wantFilter *repository.AuthorizationLogFilter
		wantStatus int
	}{
		{
			name:       "defaults",
			target:     "/authorization-logs",
			wantFilter: &repository.AuthorizationLogFilter{Limit: 100},
			wantStatus: fiber.StatusOK,
		},
		{
			name:   "full filter set",
			target: "/authorization-logs?claimant=jane&authorized=true&limit=10&offset=5",
			wantFilter: &repository.AuthorizationLogFilter{
				Claimant:   "jane",
				Authorized: &authorized,
				Limit:      10,
				Offset:     5,
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "unparsable authorized flag",
			target:     "/authorization-logs?authorized=maybe",
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAuthLogRepo{}
			if tt.wantFilter != nil {
				repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.AuthorizationLogFilter) bool {
					if f.Claimant != tt.wantFilter.Claimant || f.Limit != tt.wantFilter.Limit || f.Offset != tt.wantFilter.Offset {
						return false
					}
					if (f.Authorized == nil) != (tt.wantFilter.Authorized == nil) {
						return false
					}
					return f.Authorized == nil || *f.Authorized == *tt.wantFilter.Authorized
				})).Return([]domain.AuthorizationDecision{}, nil)
			}
			app := newAuthLogsApp(repo)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			repo.AssertExpectations(t)
		})
	}
}

package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/shield/internal/domain"
	"github.com/saturnino-fabrica-de-software/shield/internal/repository"
)

// Service exposes the user directory to handlers.
type Service struct {
	users repository.UserRepositoryInterface
}

func NewService(users repository.UserRepositoryInterface) *Service {
	return &Service{users: users}
}

// Register creates a new directory entry after validating the input.
func (s *Service) Register(ctx context.Context, username, email, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrValidationFailed
	}

	user := &domain.User{
		Username: username,
		Email:    strings.TrimSpace(email),
		Role:     role,
	}
	if !domain.ValidEmail(user.Email) {
		return nil, domain.ErrInvalidEmail
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Resolve looks up the user behind validated token claims.
func (s *Service) Resolve(ctx context.Context, claims *Claims) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", claims.UserID, err)
	}
	return user, nil
}

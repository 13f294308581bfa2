// Package service contains the business logic layer. Handlers parse HTTP and
// delegate here; services validate, enforce rules and call repositories.
// Every service takes its repository as an interface so tests can substitute
// in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

// UserService manages accounts tied to the external identity provider.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// CreateFromIdentity handles the provider's user.created webhook. If the
// account was already lazy-created by an authenticated request arriving
// before the webhook, the delivery fills in the email and names instead.
func (s *UserService) CreateFromIdentity(ctx context.Context, identityID, email, firstName, lastName string) (*model.User, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, apperror.ValidationFailed("id", "identity id is required")
	}

	existing, err := s.repo.GetUserByIdentityID(ctx, identityID)
	if err == nil {
		existing.Email = email
		existing.FirstName = firstName
		existing.LastName = lastName
		if err := s.repo.UpdateUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("updating user from identity event: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user := &model.User{
		IdentityID: identityID,
		Email:      email,
		FirstName:  firstName,
		LastName:   lastName,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to create user from identity event",
			slog.String("identityId", identityID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("identityId", identityID),
	)

	return user, nil
}

// ResolveIdentity maps a verified token subject to an internal user id,
// creating the account on the fly when the provider's webhook hasn't landed
// yet. Satisfies auth.UserResolver.
func (s *UserService) ResolveIdentity(ctx context.Context, identityID string) (string, error) {
	user, err := s.repo.GetUserByIdentityID(ctx, identityID)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return "", err
	}

	// Fallback email until the identity webhook delivers the real one.
	user = &model.User{
		IdentityID: identityID,
		Email:      fmt.Sprintf("user_%s@alternagen.com", identityID),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// A concurrent request may have just created the row.
		if errors.Is(err, apperror.ErrAlreadyExists) {
			if existing, getErr := s.repo.GetUserByIdentityID(ctx, identityID); getErr == nil {
				return existing.ID, nil
			}
		}
		return "", fmt.Errorf("lazy-creating user: %w", err)
	}

	s.logger.Info("user lazy-created", slog.String("id", user.ID))
	return user.ID, nil
}

// Me returns the authenticated user's account.
func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	FirstName *string
	LastName  *string
}

// UpdateMe applies a partial update to the user's own account.
func (s *UserService) UpdateMe(ctx context.Context, userID string, update UserUpdate) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

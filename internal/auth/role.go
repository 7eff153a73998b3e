package auth

import (
	"context"
	"fmt"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
)

// BecomeOwner elevates a seeker. Calling it for an owner fails with
// ErrAlreadyOwner and changes nothing.
func (s *Service) BecomeOwner(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsOwner() {
		return nil, apperr.ErrAlreadyOwner
	}

	if err := s.users.SetRole(ctx, user.ID, model.RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to change role, %w", err)
	}

	user.Role = model.RoleOwner
	p := user.Public()
	return &p, nil
}

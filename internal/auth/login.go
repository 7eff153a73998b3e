package auth

import (
	"context"
	"errors"
	"fmt"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/pkg/validators"
)

// Login checks the credentials and issues a session. An unknown address and
// a wrong password fail with the same error and cost one hash comparison each.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validators.Struct(&in); err != nil {
		return nil, err
	}

	user, err := s.users.ByEmail(ctx, validators.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.CompareDummy(in.Password)
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := s.hasher.Compare(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password, %w", err)
	}

	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	return s.session(user)
}

// Me returns the public view of the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := user.Public()
	return &p, nil
}

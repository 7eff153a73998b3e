package auth

import (
	"context"
	"errors"
	"fmt"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/internal/notify"
	"pgfinder/pg-api/pkg/security"
	"pgfinder/pg-api/pkg/validators"

	"go.uber.org/zap"
)

var errBadTempData = apperr.New(apperr.ErrValidation, "Registration data is invalid or expired, please sign up again")

// roleOf maps the requested role onto a stored one. Older clients send "user"
// for seekers.
func roleOf(r string) (model.Role, error) {
	switch r {
	case "", "user", string(model.RoleSeeker):
		return model.RoleSeeker, nil
	case string(model.RoleOwner):
		return model.RoleOwner, nil
	default:
		return "", apperr.New(apperr.ErrValidation, "Role must be seeker or owner")
	}
}

func (s *Service) ensureNoAccount(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check for existing user, %w", err)
	}

	if exists {
		return fmt.Errorf("email %s: %w", email, apperr.ErrConflict)
	}

	return nil
}

// RequestRegistrationOtp mails a registration code to in.Email. Nothing about
// the user is stored, the returned TempData carries it instead.
func (s *Service) RequestRegistrationOtp(ctx context.Context, in RegistrationInput) (*PendingRegistration, error) {
	if err := validators.Struct(&in); err != nil {
		return nil, err
	}

	email := validators.NormalizeEmail(in.Email)
	role, err := roleOf(in.Role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNoAccount(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	tempData, err := s.tokens.Seal(security.Bundle{
		Email:        email,
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         string(role),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seal registration data, %w", err)
	}

	if err := s.issueCode(ctx, email, in.Name, model.PurposeRegistration, notify.RegistrationOtp); err != nil {
		return nil, err
	}

	return &PendingRegistration{Email: email, TempData: tempData}, nil
}

// ResendRegistrationOtp invalidates every registration code sent to the
// address and mails a new one.
func (s *Service) ResendRegistrationOtp(ctx context.Context, in ResendInput) (*PendingRegistration, error) {
	if err := validators.Struct(&in); err != nil {
		return nil, err
	}

	email := validators.NormalizeEmail(in.Email)
	bundle, err := s.openBundle(in.TempData, email)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNoAccount(ctx, email); err != nil {
		return nil, err
	}

	if err := s.codes.DeleteByEmail(ctx, email, model.PurposeRegistration); err != nil {
		return nil, fmt.Errorf("failed to purge old codes, %w", err)
	}

	if err := s.issueCode(ctx, email, bundle.Name, model.PurposeRegistration, notify.RegistrationOtp); err != nil {
		return nil, err
	}

	return &PendingRegistration{Email: email, TempData: in.TempData}, nil
}

// VerifyRegistrationOtp creates the account once the emailed code matches.
func (s *Service) VerifyRegistrationOtp(ctx context.Context, in VerifyRegistrationInput) (*Session, error) {
	if err := validators.Struct(&in); err != nil {
		return nil, err
	}

	email := validators.NormalizeEmail(in.Email)
	bundle, err := s.openBundle(in.TempData, email)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	code, err := s.codes.FindUsable(ctx, email, in.Code, model.PurposeRegistration, now)
	if err != nil {
		return nil, err
	}

	// Someone may have registered the address since the code was sent
	if err := s.ensureNoAccount(ctx, email); err != nil {
		return nil, err
	}

	role, err := roleOf(bundle.Role)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         bundle.Name,
		Email:        email,
		Phone:        bundle.Phone,
		PasswordHash: bundle.PasswordHash,
		Role:         role,
		Verified:     true,
	}

	// The unique index settles concurrent verifications
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// The account exists at this point, a code left unused can't create a second one
	if err := s.codes.Consume(ctx, code.ID, now); err != nil {
		zap.L().Warn("Failed to mark registration code used", zap.Uint("codeID", code.ID), zap.Error(err))
	}

	s.notifyQuietly(ctx, email, user.Name, notify.Welcome)

	return s.session(user)
}

func (s *Service) openBundle(tempData, email string) (*security.Bundle, error) {
	b, err := s.tokens.Open(tempData)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) || errors.Is(err, security.ErrTokenInvalid) {
			return nil, errBadTempData
		}
		return nil, err
	}

	if b.Email != email {
		return nil, errBadTempData
	}

	return &b, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/internal/notify"
	"pgfinder/pg-api/pkg/validators"
)

// RequestPasswordReset mails a reset code to a registered address.
func (s *Service) RequestPasswordReset(ctx context.Context, in ForgotPasswordInput) error {
	if err := validators.Struct(&in); err != nil {
		return err
	}

	email := validators.NormalizeEmail(in.Email)
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrNotFound, "User with this email does not exist")
		}
		return fmt.Errorf("failed to look up user, %w", err)
	}

	return s.issueCode(ctx, email, user.Name, model.PurposePasswordReset, notify.PasswordResetOtp)
}

// VerifyResetOtp confirms a reset code without touching the password. The
// code is consumed, but ResetPassword still accepts it for ResetGrace.
func (s *Service) VerifyResetOtp(ctx context.Context, in VerifyResetInput) error {
	if err := validators.Struct(&in); err != nil {
		return err
	}

	now := s.clock()
	code, err := s.codes.FindUsable(ctx, validators.NormalizeEmail(in.Email), in.Code, model.PurposePasswordReset, now)
	if err != nil {
		return err
	}

	return s.codes.MarkVerified(ctx, code.ID, now)
}

// ResetPassword replaces the password when the code is either still unused
// or was verified less than ResetGrace ago. A code resets a password once.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validators.Struct(&in); err != nil {
		return err
	}

	email := validators.NormalizeEmail(in.Email)
	now := s.clock()

	code, err := s.codes.FindResettable(ctx, email, in.Code, now, now.Add(-s.cfg.ResetGrace))
	if err != nil {
		return err
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrNotFound, "User not found")
		}
		return fmt.Errorf("failed to look up user, %w", err)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	// Spend the code before changing anything so a racing request loses
	if err := s.codes.Redeem(ctx, code.ID, now); err != nil {
		return err
	}

	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to store password, %w", err)
	}

	s.notifyQuietly(ctx, email, user.Name, notify.PasswordResetConfirmation)
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"

	"gorm.io/gorm"
)

// Codes keeps one-time codes. Every state change is a conditional update so
// two requests racing on the same code can never both consume it.
type Codes struct {
	db *gorm.DB
}

func NewCodes(db *gorm.DB) *Codes {
	return &Codes{db: db}
}

func (s *Codes) Create(ctx context.Context, c *model.OneTimeCode) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// FindUsable returns an unused code for (email, code, purpose) that has not
// expired at now.
func (s *Codes) FindUsable(ctx context.Context, email, code string, purpose model.Purpose, now time.Time) (*model.OneTimeCode, error) {
	var c model.OneTimeCode

	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ? AND purpose = ?", email, code, purpose).
		Where("used = ? AND expires_at > ?", false, now).
		Order("created_at DESC").
		First(&c).
		Error
	if err != nil {
		return nil, codeErr(err)
	}

	return &c, nil
}

// FindResettable returns a password-reset code that may still be spent on a
// password change: either unused and unexpired, or confirmed through
// MarkVerified after since and not redeemed yet.
func (s *Codes) FindResettable(ctx context.Context, email, code string, now, since time.Time) (*model.OneTimeCode, error) {
	var c model.OneTimeCode

	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ? AND purpose = ?", email, code, model.PurposePasswordReset).
		Where("redeemed_at IS NULL").
		Where(
			s.db.Where("used = ? AND expires_at > ?", false, now).
				Or("verified_at IS NOT NULL AND verified_at > ?", since),
		).
		Order("created_at DESC").
		First(&c).
		Error
	if err != nil {
		return nil, codeErr(err)
	}

	return &c, nil
}

// Consume marks an unused code as used.
func (s *Codes) Consume(ctx context.Context, id uint, now time.Time) error {
	return s.transition(ctx, id, "used = ?", []any{false}, map[string]any{
		"used":    true,
		"used_at": now,
	})
}

// MarkVerified consumes a password-reset code and records when it was confirmed.
func (s *Codes) MarkVerified(ctx context.Context, id uint, now time.Time) error {
	return s.transition(ctx, id, "used = ?", []any{false}, map[string]any{
		"used":        true,
		"used_at":     now,
		"verified_at": now,
	})
}

// Redeem spends a password-reset code. It succeeds at most once per code.
func (s *Codes) Redeem(ctx context.Context, id uint, now time.Time) error {
	return s.transition(ctx, id, "redeemed_at IS NULL", nil, map[string]any{
		"used":        true,
		"used_at":     gorm.Expr("COALESCE(used_at, ?)", now),
		"redeemed_at": now,
	})
}

func (s *Codes) transition(ctx context.Context, id uint, cond string, args []any, fields map[string]any) error {
	r := s.db.WithContext(ctx).
		Model(&model.OneTimeCode{}).
		Where("id = ?", id).
		Where(cond, args...).
		Updates(fields)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return fmt.Errorf("code already used: %w", apperr.ErrInvalidOrExpiredCode)
	}

	return nil
}

// DeleteByEmail purges every code of purpose issued to email.
func (s *Codes) DeleteByEmail(ctx context.Context, email string, purpose model.Purpose) error {
	return s.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", email, purpose).
		Delete(&model.OneTimeCode{}).
		Error
}

// DeleteExpired removes codes that expired before cutoff and reports how many went.
func (s *Codes) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r := s.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&model.OneTimeCode{})

	return r.RowsAffected, r.Error
}

// Count is used by tests and diagnostics.
func (s *Codes) Count(ctx context.Context, email string, purpose model.Purpose) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.OneTimeCode{}).
		Where("email = ? AND purpose = ?", email, purpose).
		Count(&n).
		Error

	return n, err
}

func codeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("no matching code: %w", apperr.ErrInvalidOrExpiredCode)
	}

	return err
}

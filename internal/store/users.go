// Package store wraps every database access behind small, typed stores so
// the workflows never touch gorm directly.
package store

import (
	"context"
	"errors"
	"fmt"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newID() (string, error) {
	return gonanoid.Generate(charset, 16)
}

// notFound converts gorm's not found error into the taxonomy.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	}

	return err
}

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// ByEmail expects an already normalized address.
func (s *Users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err, "user")
	}

	return &u, nil
}

func (s *Users) ByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err, "user")
	}

	return &u, nil
}

func (s *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&n).
		Error

	return n > 0, err
}

// Create inserts u, generating an id when it has none. The unique index on
// email is what actually prevents duplicate accounts.
func (s *Users) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		id, err := newID()
		if err != nil {
			return fmt.Errorf("failed to generate user id, %w", err)
		}
		u.ID = id
	}

	if u.Role == "" {
		u.Role = model.RoleSeeker
	}

	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create user: %w", apperr.ErrConflict)
	}

	return err
}

func (s *Users) SetRole(ctx context.Context, id string, role model.Role) error {
	return s.update(ctx, id, map[string]any{"role": role})
}

func (s *Users) SetPassword(ctx context.Context, id, hash string) error {
	return s.update(ctx, id, map[string]any{"password_hash": hash})
}

// UpdateProfile changes only the columns present in fields.
func (s *Users) UpdateProfile(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	return s.update(ctx, id, fields)
}

func (s *Users) update(ctx context.Context, id string, fields map[string]any) error {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return fmt.Errorf("user: %w", apperr.ErrNotFound)
	}

	return nil
}

// Delete removes the user and every listing they own in one transaction.
func (s *Users) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&model.Listing{}).Error; err != nil {
			return fmt.Errorf("failed to delete listings, %w", err)
		}

		r := tx.Where("id = ?", id).Delete(&model.User{})
		if r.Error != nil {
			return fmt.Errorf("failed to delete user, %w", r.Error)
		}

		if r.RowsAffected == 0 {
			return fmt.Errorf("user: %w", apperr.ErrNotFound)
		}

		return nil
	})
}

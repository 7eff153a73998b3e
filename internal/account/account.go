// Package account serves the signed in user: profile edits, password
// changes, dashboards and account removal.
package account

import (
	"context"
	"fmt"
	"time"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/pkg/validators"
)

type UserStore interface {
	ByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]any) error
	SetPassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

type ListingStats interface {
	Counts(ctx context.Context, ownerID string) (model.ListingCounts, error)
	GenderDistribution(ctx context.Context, ownerID string) ([]model.GenderCount, error)
	PriceRange(ctx context.Context, ownerID string) (model.PriceRange, error)
	Recent(ctx context.Context, ownerID string, n int) ([]model.Listing, error)
}

type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, encoded string) (bool, error)
}

// ImageStore turns an uploaded image into the URL that gets stored.
type ImageStore interface {
	Store(ctx context.Context, folder, src string) (string, error)
}

type Service struct {
	users    UserStore
	listings ListingStats
	hasher   Hasher
	images   ImageStore
}

func New(users UserStore, listings ListingStats, hasher Hasher, images ImageStore) *Service {
	return &Service{users: users, listings: listings, hasher: hasher, images: images}
}

type ProfileInput struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=50"`
	Phone        *string `json:"phone" binding:"omitempty,phone10"`
	ProfileImage *string `json:"profileImage"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=128"`
}

type DeleteAccountInput struct {
	Password string `json:"password" binding:"required"`
}

var (
	errPasswordsMissing = apperr.New(apperr.ErrValidation, "Current password and new password are required")
	errWrongPassword    = apperr.New(apperr.ErrValidation, "Current password is incorrect")
	errPasswordRequired = apperr.New(apperr.ErrValidation, "Password is required to delete account")
	errPasswordMismatch = apperr.New(apperr.ErrValidation, "Password is incorrect")
)

// UpdateProfile changes only the fields that were sent.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.PublicUser, error) {
	if err := validators.Struct(&in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil && *in.Name != "" {
		fields["name"] = *in.Name
	}
	if in.Phone != nil && *in.Phone != "" {
		fields["phone"] = *in.Phone
	}
	if in.ProfileImage != nil && *in.ProfileImage != "" {
		url, err := s.images.Store(ctx, "profiles/"+userID, *in.ProfileImage)
		if err != nil {
			return nil, err
		}
		fields["profile_image"] = url
	}

	if err := s.users.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, err
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := user.Public()
	return &p, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return errPasswordsMissing
	}

	if err := validators.Struct(&in); err != nil {
		return err
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.checkPassword(in.CurrentPassword, user, errWrongPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	return s.users.SetPassword(ctx, userID, hash)
}

// DeleteAccount removes the user, and every listing they own, after
// checking the password once more.
func (s *Service) DeleteAccount(ctx context.Context, userID string, in DeleteAccountInput) error {
	if in.Password == "" {
		return errPasswordRequired
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.checkPassword(in.Password, user, errPasswordMismatch); err != nil {
		return err
	}

	return s.users.Delete(ctx, userID)
}

func (s *Service) checkPassword(password string, user *model.User, mismatch error) error {
	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to compare password, %w", err)
	}

	if !ok {
		return mismatch
	}

	return nil
}

// ListingSummary is the short form of a listing shown on the dashboard.
type ListingSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Location    model.Location `json:"location"`
	Price       model.Price    `json:"price"`
	IsAvailable bool           `json:"isAvailable"`
	IsVerified  bool           `json:"isVerified"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type Dashboard struct {
	User           model.PublicUser     `json:"user"`
	Stats          *model.ListingCounts `json:"stats"`
	RecentListings []ListingSummary     `json:"recentListings,omitempty"`
}

// Dashboard shows the user and, for owners, how their listings are doing.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{User: user.Public(), Stats: &model.ListingCounts{}}
	if !user.IsOwner() {
		return d, nil
	}

	counts, err := s.listings.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	d.Stats = &counts

	recent, err := s.listings.Recent(ctx, user.ID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent listings, %w", err)
	}

	d.RecentListings = make([]ListingSummary, len(recent))
	for i, l := range recent {
		d.RecentListings[i] = ListingSummary{
			ID:          l.ID,
			Name:        l.Name,
			Location:    l.Location,
			Price:       l.Price,
			IsAvailable: l.IsAvailable,
			IsVerified:  l.IsVerified,
			CreatedAt:   l.CreatedAt,
		}
	}

	return d, nil
}

type OwnerStats struct {
	model.ListingCounts
	GenderDistribution []model.GenderCount `json:"genderDistribution"`
	PriceRange         model.PriceRange    `json:"priceRange"`
}

type OwnerDashboard struct {
	User           model.PublicUser `json:"user"`
	Stats          OwnerStats       `json:"stats"`
	RecentListings []model.Listing  `json:"recentListings"`
}

// OwnerDashboard is the detailed view only owners get.
func (s *Service) OwnerDashboard(ctx context.Context, userID string) (*OwnerDashboard, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsOwner() {
		return nil, apperr.New(apperr.ErrForbidden, "Access denied. Owner privileges required.")
	}

	counts, err := s.listings.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	genders, err := s.listings.GenderDistribution(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to group listings by gender, %w", err)
	}

	prices, err := s.listings.PriceRange(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute price range, %w", err)
	}

	recent, err := s.listings.Recent(ctx, user.ID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent listings, %w", err)
	}
	if recent == nil {
		recent = []model.Listing{}
	}

	return &OwnerDashboard{
		User: user.Public(),
		Stats: OwnerStats{
			ListingCounts:      counts,
			GenderDistribution: genders,
			PriceRange:         prices,
		},
		RecentListings: recent,
	}, nil
}

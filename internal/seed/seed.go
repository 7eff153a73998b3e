// Package seed fills a fresh database with a demo owner and a few listings
// so the frontend has something to show during development.
package seed

import (
	"context"
	"errors"
	"fmt"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"

	"go.uber.org/zap"
)

const (
	OwnerEmail    = "owner@test.com"
	ownerPassword = "password123"
)

type users interface {
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type listings interface {
	Create(ctx context.Context, l *model.Listing) error
	Counts(ctx context.Context, ownerID string) (model.ListingCounts, error)
}

type hasher interface {
	Hash(password string) (string, error)
}

type Result struct {
	OwnerID  string
	Listings int
}

// Run creates the demo owner if missing and inserts the sample listings
// when that owner has none yet, so running it twice adds nothing. Other
// users' data is never touched.
func Run(ctx context.Context, u users, l listings, h hasher) (Result, error) {
	owner, err := ensureOwner(ctx, u, h)
	if err != nil {
		return Result{}, err
	}

	res := Result{OwnerID: owner.ID}

	counts, err := l.Counts(ctx, owner.ID)
	if err != nil {
		return res, err
	}
	if counts.TotalListings > 0 {
		zap.L().Info("Demo listings already present, skipping", zap.Int64("count", counts.TotalListings))
		return res, nil
	}

	for _, pg := range Listings() {
		pg.OwnerID = owner.ID
		if err := l.Create(ctx, &pg); err != nil {
			return res, fmt.Errorf("failed to insert %q, %w", pg.Name, err)
		}
		res.Listings++
	}

	zap.L().Info("Inserted demo listings", zap.Int("count", res.Listings))
	return res, nil
}

func ensureOwner(ctx context.Context, u users, h hasher) (*model.User, error) {
	owner, err := u.ByEmail(ctx, OwnerEmail)
	if err == nil {
		if owner.Role != model.RoleOwner {
			return nil, fmt.Errorf("%s exists but is not an owner", OwnerEmail)
		}
		return owner, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := h.Hash(ownerPassword)
	if err != nil {
		return nil, err
	}

	owner = &model.User{
		Name:         "Test Owner",
		Email:        OwnerEmail,
		Phone:        "9876543210",
		PasswordHash: hash,
		Role:         model.RoleOwner,
		Verified:     true,
	}
	if err := u.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create demo owner, %w", err)
	}

	zap.L().Info("Created demo owner", zap.String("email", OwnerEmail))
	return owner, nil
}

// Listings returns a fresh copy of the sample listings without an owner.
func Listings() []model.Listing {
	const (
		entrance = "https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=500"
		room     = "https://images.unsplash.com/photo-1560448075-bb485b067938?w=500"
	)

	return []model.Listing{
		{
			Name:        "Sunshine PG for Girls",
			Description: "A comfortable and safe PG accommodation for girls with modern amenities and 24/7 security.",
			Location: model.Location{
				Address: "123 Sunshine Street",
				City:    "Ahmedabad",
				State:   "Gujarat",
				Pincode: "380001",
			},
			Price:     model.Price{Monthly: 8000, Deposit: 5000},
			Amenities: model.StringSlice{"WiFi", "AC", "Food", "Laundry", "Security"},
			Gender:    "girls",
			RoomTypes: []model.RoomType{
				{Type: "Single", Available: 5, Price: 8000},
				{Type: "Double", Available: 3, Price: 6000},
				{Type: "Triple", Available: 2, Price: 4500},
			},
			Images: []model.Image{
				{URL: entrance, Caption: "Main entrance", IsPrimary: true},
				{URL: room, Caption: "Common area"},
			},
			ContactInfo: model.ContactInfo{Phone: "9876543210", Email: "sunshine@pg.com"},
			Rules:       []string{"No smoking", "No pets", "Quiet hours after 10 PM"},
			IsAvailable: true,
			IsVerified:  true,
			Rating:      model.Rating{Average: 4.5, Count: 12},
		},
		{
			Name:        "Royal PG for Boys",
			Description: "Premium PG accommodation for boys with excellent facilities and convenient location.",
			Location: model.Location{
				Address: "456 Royal Avenue",
				City:    "Ahmedabad",
				State:   "Gujarat",
				Pincode: "380002",
			},
			Price:     model.Price{Monthly: 7500, Deposit: 4000},
			Amenities: model.StringSlice{"WiFi", "AC", "Food", "Gym", "Parking"},
			Gender:    "boys",
			RoomTypes: []model.RoomType{
				{Type: "Single", Available: 3, Price: 7500},
				{Type: "Double", Available: 4, Price: 5500},
			},
			Images: []model.Image{
				{URL: entrance, Caption: "Building exterior", IsPrimary: true},
				{URL: room, Caption: "Room interior"},
			},
			ContactInfo: model.ContactInfo{Phone: "9876543211", Email: "royal@pg.com"},
			Rules:       []string{"No smoking", "No pets", "Maintain cleanliness"},
			IsAvailable: true,
			IsVerified:  true,
			Rating:      model.Rating{Average: 4.3, Count: 8},
		},
		{
			Name:        "Green Valley PG",
			Description: "Eco-friendly PG accommodation with garden and peaceful environment.",
			Location: model.Location{
				Address: "789 Green Valley Road",
				City:    "Mumbai",
				State:   "Maharashtra",
				Pincode: "400001",
			},
			Price:     model.Price{Monthly: 12000, Deposit: 8000},
			Amenities: model.StringSlice{"WiFi", "AC", "Food", "Security"},
			Gender:    "girls",
			RoomTypes: []model.RoomType{
				{Type: "Single", Available: 2, Price: 12000},
				{Type: "Double", Available: 3, Price: 9000},
			},
			Images: []model.Image{
				{URL: entrance, Caption: "Garden view", IsPrimary: true},
				{URL: room, Caption: "Room view"},
			},
			ContactInfo: model.ContactInfo{Phone: "9876543212", Email: "greenvalley@pg.com"},
			Rules:       []string{"No smoking", "No pets", "Respect garden area"},
			IsAvailable: true,
			IsVerified:  true,
			Rating:      model.Rating{Average: 4.7, Count: 15},
		},
	}
}

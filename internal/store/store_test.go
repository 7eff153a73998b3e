package store

import (
	"context"
	"testing"
	"time"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, users *Users, email string, role model.Role) *model.User {
	t.Helper()

	u := &model.User{Name: "Test", Email: email, PasswordHash: "hash", Role: role, Verified: true}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func newListing(owner string, city string, monthly int, amenities ...string) *model.Listing {
	return &model.Listing{
		Name:        "PG in " + city,
		Description: "A comfortable place to stay",
		Location: model.Location{
			Address: "12 MG Road",
			City:    city,
			State:   "Karnataka",
			Pincode: "560001",
		},
		Price:       model.Price{Monthly: monthly},
		Amenities:   amenities,
		Gender:      "unisex",
		OwnerID:     owner,
		ContactInfo: model.ContactInfo{Phone: "9876543210", Email: "owner@example.com"},
		IsAvailable: true,
	}
}

func TestUsersCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(testutil.NewDB(t))

	u := newUser(t, users, "alice@example.com", "")
	assert.Len(t, u.ID, 16)
	assert.Equal(t, model.RoleSeeker, u.Role)

	err := users.Create(ctx, &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	exists, err := users.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUsersNotFound(t *testing.T) {
	users := NewUsers(testutil.NewDB(t))

	_, err := users.ByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = users.SetRole(context.Background(), "missing", model.RoleOwner)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUsersDeleteRemovesListings(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	users, listings := NewUsers(conn), NewListings(conn)

	owner := newUser(t, users, "owner@example.com", model.RoleOwner)
	other := newUser(t, users, "other@example.com", model.RoleOwner)
	require.NoError(t, listings.Create(ctx, newListing(owner.ID, "Bangalore", 8000)))
	require.NoError(t, listings.Create(ctx, newListing(other.ID, "Pune", 9000)))

	require.NoError(t, users.Delete(ctx, owner.ID))

	_, err := users.ByID(ctx, owner.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	all, total, err := listings.List(ctx, ListingFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, other.ID, all[0].OwnerID)
}

func TestCodesConsumeOnce(t *testing.T) {
	ctx := context.Background()
	codes := NewCodes(testutil.NewDB(t))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c := &model.OneTimeCode{Email: "a@example.com", Code: "123456", Purpose: model.PurposeRegistration, ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, codes.Create(ctx, c))

	found, err := codes.FindUsable(ctx, "a@example.com", "123456", model.PurposeRegistration, now)
	require.NoError(t, err)
	require.NoError(t, codes.Consume(ctx, found.ID, now))

	assert.ErrorIs(t, codes.Consume(ctx, found.ID, now), apperr.ErrInvalidOrExpiredCode)

	_, err = codes.FindUsable(ctx, "a@example.com", "123456", model.PurposeRegistration, now)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
}

func TestCodesExpiryAndPurpose(t *testing.T) {
	ctx := context.Background()
	codes := NewCodes(testutil.NewDB(t))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, codes.Create(ctx, &model.OneTimeCode{
		Email: "a@example.com", Code: "111111", Purpose: model.PurposeRegistration, ExpiresAt: now,
	}))

	// Expiry equal to now is already expired
	_, err := codes.FindUsable(ctx, "a@example.com", "111111", model.PurposeRegistration, now)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)

	// A registration code is never a reset code
	_, err = codes.FindUsable(ctx, "a@example.com", "111111", model.PurposePasswordReset, now.Add(-time.Minute))
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
}

func TestCodesResetGrace(t *testing.T) {
	ctx := context.Background()
	codes := NewCodes(testutil.NewDB(t))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	grace := 10 * time.Minute

	c := &model.OneTimeCode{Email: "a@example.com", Code: "654321", Purpose: model.PurposePasswordReset, ExpiresAt: now.Add(10 * time.Minute)}
	require.NoError(t, codes.Create(ctx, c))
	require.NoError(t, codes.MarkVerified(ctx, c.ID, now))

	later := now.Add(5 * time.Minute)
	found, err := codes.FindResettable(ctx, "a@example.com", "654321", later, later.Add(-grace))
	require.NoError(t, err)
	require.NoError(t, codes.Redeem(ctx, found.ID, later))

	_, err = codes.FindResettable(ctx, "a@example.com", "654321", later, later.Add(-grace))
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredCode)
	assert.ErrorIs(t, codes.Redeem(ctx, found.ID, later), apperr.ErrInvalidOrExpiredCode)
}

func TestCodesDeleteExpired(t *testing.T) {
	ctx := context.Background()
	codes := NewCodes(testutil.NewDB(t))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, codes.Create(ctx, &model.OneTimeCode{Email: "a@example.com", Code: "1", Purpose: model.PurposeRegistration, ExpiresAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, codes.Create(ctx, &model.OneTimeCode{Email: "a@example.com", Code: "2", Purpose: model.PurposeRegistration, ExpiresAt: now.Add(time.Minute)}))

	n, err := codes.DeleteExpired(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := codes.Count(ctx, "a@example.com", model.PurposeRegistration)
	require.NoError(t, err)
	assert.EqualValues(t, 1, left)
}

func TestListingsFilters(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	users, listings := NewUsers(conn), NewListings(conn)
	owner := newUser(t, users, "owner@example.com", model.RoleOwner)

	require.NoError(t, listings.Create(ctx, newListing(owner.ID, "Bangalore", 8000, "WiFi", "Food")))
	require.NoError(t, listings.Create(ctx, newListing(owner.ID, "Pune", 12000, "AC")))
	hidden := newListing(owner.ID, "Bangalore", 5000, "WiFi")
	hidden.IsAvailable = false
	require.NoError(t, listings.Create(ctx, hidden))

	got, total, err := listings.List(ctx, ListingFilter{AvailableOnly: true, City: "bangal", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Owner)
	assert.Equal(t, owner.Email, got[0].Owner.Email)
	assert.Equal(t, "12 MG Road, Bangalore, Karnataka - 560001", got[0].FullAddress)

	_, total, err = listings.List(ctx, ListingFilter{AvailableOnly: true, Amenities: []string{"AC", "Food"}, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = listings.List(ctx, ListingFilter{AvailableOnly: true, MinPrice: 9000, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	got, _, err = listings.List(ctx, ListingFilter{AvailableOnly: true, SortBy: "price", SortOrder: "asc", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 8000, got[0].Price.Monthly)

	got, _, err = listings.List(ctx, ListingFilter{AvailableOnly: true, Anywhere: "pune", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pune", got[0].Location.City)

	cities, err := listings.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bangalore", "Pune"}, cities)
}

func TestListingsStats(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	users, listings := NewUsers(conn), NewListings(conn)
	owner := newUser(t, users, "owner@example.com", model.RoleOwner)

	a := newListing(owner.ID, "Bangalore", 8000)
	a.IsVerified = true
	b := newListing(owner.ID, "Pune", 12000)
	b.IsAvailable = false
	b.Gender = "girls"
	require.NoError(t, listings.Create(ctx, a))
	require.NoError(t, listings.Create(ctx, b))

	counts, err := listings.Counts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingCounts{TotalListings: 2, ActiveListings: 1, VerifiedListings: 1, PendingVerification: 1}, counts)

	genders, err := listings.GenderDistribution(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.GenderCount{{Gender: "girls", Count: 1}, {Gender: "unisex", Count: 1}}, genders)

	prices, err := listings.PriceRange(ctx, owner.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10000, prices.AvgPrice, 0.001)
	assert.Equal(t, 8000, prices.MinPrice)
	assert.Equal(t, 12000, prices.MaxPrice)

	empty, err := listings.PriceRange(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, model.PriceRange{}, empty)
}

package seed

import (
	"context"
	"testing"

	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/internal/store"
	"pgfinder/pg-api/internal/testutil"
	"pgfinder/pg-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSeedsOnce(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	users, listings := store.NewUsers(conn), store.NewListings(conn)
	hasher := security.NewFast()

	res, err := Run(ctx, users, listings, hasher)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Listings)

	owner, err := users.ByEmail(ctx, OwnerEmail)
	require.NoError(t, err)
	assert.Equal(t, res.OwnerID, owner.ID)
	assert.Equal(t, model.RoleOwner, owner.Role)
	assert.True(t, owner.Verified)

	ok, err := hasher.Compare(ownerPassword, owner.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	cities, err := listings.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ahmedabad", "Mumbai"}, cities)

	page, total, err := listings.List(ctx, store.ListingFilter{AvailableOnly: true, Gender: "girls", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, l := range page {
		require.NotNil(t, l.Owner)
		assert.Equal(t, "Test Owner", l.Owner.Name)
	}

	again, err := Run(ctx, users, listings, hasher)
	require.NoError(t, err)
	assert.Equal(t, res.OwnerID, again.OwnerID)
	assert.Zero(t, again.Listings)

	counts, err := listings.Counts(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts.TotalListings)
	assert.EqualValues(t, 3, counts.VerifiedListings)
}

func TestRunRefusesSeekerWithOwnerEmail(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	users, listings := store.NewUsers(conn), store.NewListings(conn)

	require.NoError(t, users.Create(ctx, &model.User{Name: "Someone", Email: OwnerEmail, PasswordHash: "x"}))

	_, err := Run(ctx, users, listings, security.NewFast())
	assert.Error(t, err)

	cities, err := listings.Cities(ctx)
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestListingsAreFreshCopies(t *testing.T) {
	a := Listings()
	a[0].Name = "changed"
	a[0].OwnerID = "x"

	b := Listings()
	assert.Equal(t, "Sunshine PG for Girls", b[0].Name)
	assert.Empty(t, b[0].OwnerID)
}

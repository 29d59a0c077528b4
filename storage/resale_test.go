package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellark/stellark-go/models"
)

func testListing(createdAt time.Time) models.ResaleListing {
	return models.ResaleListing{
		ContractAddress: "CAFJZQWSED6YAWZU3GWRTOCNPPCGBN32L7QV43XX5LZLFTK6JLN34DLN",
		SellerAddress:   "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF",
		TokensForSale:   100,
		PricePerToken:   3.25,
		CreatedAt:       createdAt,
	}
}

func TestCreateAndGetResaleListing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := db.CreateResaleListing(ctx, testListing(time.Now().UTC()))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	got, err := db.GetResaleListing(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.ContractAddress, got.ContractAddress)
	assert.Equal(t, created.SellerAddress, got.SellerAddress)
	assert.Equal(t, created.TokensForSale, got.TokensForSale)
	assert.Equal(t, created.PricePerToken, got.PricePerToken)
	assert.True(t, got.IsActive)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)
}

func TestGetResaleListingNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetResaleListing(context.Background(), "no-such-listing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPersistence, "a missing row is a valid outcome, not a persistence failure")
}

func TestListActiveResaleListingsNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	oldest, err := db.CreateResaleListing(ctx, testListing(base))
	require.NoError(t, err)
	middle, err := db.CreateResaleListing(ctx, testListing(base.Add(10*time.Minute)))
	require.NoError(t, err)
	newest, err := db.CreateResaleListing(ctx, testListing(base.Add(20*time.Minute)))
	require.NoError(t, err)

	// a deactivated listing drops out of discovery
	require.NoError(t, db.DeactivateResaleListing(ctx, middle.ID))

	listings, err := db.ListActiveResaleListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, newest.ID, listings[0].ID)
	assert.Equal(t, oldest.ID, listings[1].ID)
}

func TestUpdateResaleListingQuantity(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := db.CreateResaleListing(ctx, testListing(time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, db.UpdateResaleListingQuantity(ctx, created.ID, 40))

	got, err := db.GetResaleListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.TokensForSale)
	assert.True(t, got.IsActive)
}

func TestUpdateResaleListingQuantityNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := db.UpdateResaleListingQuantity(context.Background(), "no-such-listing", 40)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateResaleListingIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := db.CreateResaleListing(ctx, testListing(time.Now().UTC()))
	require.NoError(t, err)

	require.NoError(t, db.DeactivateResaleListing(ctx, created.ID))
	require.NoError(t, db.DeactivateResaleListing(ctx, created.ID))

	got, err := db.GetResaleListing(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

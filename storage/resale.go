package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stellark/stellark-go/models"
)

// CreateResaleListing inserts a new active listing and returns the stored
// row including its generated id.
func (d *DB) CreateResaleListing(ctx context.Context, listing models.ResaleListing) (models.ResaleListing, error) {
	listing.ID = uuid.NewString()
	listing.IsActive = true
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}

	_, err := d.pool.Exec(
		ctx,
		`INSERT INTO resale_listings (
			id, contract_address, seller_address,
			tokens_for_sale, price_per_token, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		listing.ID, listing.ContractAddress, listing.SellerAddress,
		listing.TokensForSale, listing.PricePerToken, listing.IsActive, listing.CreatedAt,
	)
	if err != nil {
		return models.ResaleListing{}, fmt.Errorf("%w: failed to create resale listing: %v", ErrPersistence, err)
	}
	return listing, nil
}

// ListActiveResaleListings returns active listings, newest first.
func (d *DB) ListActiveResaleListings(ctx context.Context) ([]models.ResaleListing, error) {
	rows, err := d.pool.Query(
		ctx,
		`SELECT id, contract_address, seller_address,
		        tokens_for_sale, price_per_token, is_active, created_at
		 FROM resale_listings
		 WHERE is_active = TRUE
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list resale listings: %v", ErrPersistence, err)
	}
	defer rows.Close()

	listings := []models.ResaleListing{}
	for rows.Next() {
		var l models.ResaleListing
		if err := rows.Scan(
			&l.ID, &l.ContractAddress, &l.SellerAddress,
			&l.TokensForSale, &l.PricePerToken, &l.IsActive, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan resale listing row: %v", ErrPersistence, err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read resale listing rows: %v", ErrPersistence, err)
	}
	return listings, nil
}

// GetResaleListing looks up one listing by id.
func (d *DB) GetResaleListing(ctx context.Context, id string) (models.ResaleListing, error) {
	var l models.ResaleListing
	err := d.pool.QueryRow(
		ctx,
		`SELECT id, contract_address, seller_address,
		        tokens_for_sale, price_per_token, is_active, created_at
		 FROM resale_listings
		 WHERE id = $1`,
		id,
	).Scan(
		&l.ID, &l.ContractAddress, &l.SellerAddress,
		&l.TokensForSale, &l.PricePerToken, &l.IsActive, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ResaleListing{}, fmt.Errorf("%w: resale listing %s", ErrNotFound, id)
	}
	if err != nil {
		return models.ResaleListing{}, fmt.Errorf("%w: failed to get resale listing: %v", ErrPersistence, err)
	}
	return l, nil
}

// UpdateResaleListingQuantity overwrites the remaining quantity. The caller
// computes the remainder; there is no optimistic-concurrency guard, so two
// concurrent settlements against one listing are a known race.
func (d *DB) UpdateResaleListingQuantity(ctx context.Context, id string, newQuantity int64) error {
	tag, err := d.pool.Exec(
		ctx,
		`UPDATE resale_listings SET tokens_for_sale = $1 WHERE id = $2`,
		newQuantity, id,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update resale listing quantity: %v", ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: resale listing %s", ErrNotFound, id)
	}
	return nil
}

// DeactivateResaleListing flips a listing to inactive. Idempotent.
func (d *DB) DeactivateResaleListing(ctx context.Context, id string) error {
	_, err := d.pool.Exec(
		ctx,
		`UPDATE resale_listings SET is_active = FALSE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to deactivate resale listing: %v", ErrPersistence, err)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stellark/stellark-go/models"
)

// SaveCompany inserts a new company listing. The contract address is the
// primary key; it is not verified against the ledger here.
func (d *DB) SaveCompany(ctx context.Context, company models.CompanyMetadata) error {
	_, err := d.pool.Exec(
		ctx,
		`INSERT INTO companies (
			contract_address, name, description, owner_address,
			token_price, target_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		company.ContractAddress, company.Name, company.Description, company.OwnerAddress,
		company.TokenPrice, company.TargetAmount, company.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save company: %v", ErrPersistence, err)
	}
	return nil
}

// ListCompanies returns all listings, newest first. An empty table yields an
// empty slice, not an error.
func (d *DB) ListCompanies(ctx context.Context) ([]models.CompanyMetadata, error) {
	rows, err := d.pool.Query(
		ctx,
		`SELECT contract_address, name, description, owner_address,
		        token_price, target_amount, created_at
		 FROM companies
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list companies: %v", ErrPersistence, err)
	}
	defer rows.Close()

	companies := []models.CompanyMetadata{}
	for rows.Next() {
		var c models.CompanyMetadata
		if err := rows.Scan(
			&c.ContractAddress, &c.Name, &c.Description, &c.OwnerAddress,
			&c.TokenPrice, &c.TargetAmount, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan company row: %v", ErrPersistence, err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read company rows: %v", ErrPersistence, err)
	}
	return companies, nil
}

// GetCompany looks up a listing by contract address. A missing row returns
// ErrNotFound; transport failures return ErrPersistence.
func (d *DB) GetCompany(ctx context.Context, contractAddress string) (models.CompanyMetadata, error) {
	var c models.CompanyMetadata
	err := d.pool.QueryRow(
		ctx,
		`SELECT contract_address, name, description, owner_address,
		        token_price, target_amount, created_at
		 FROM companies
		 WHERE contract_address = $1`,
		contractAddress,
	).Scan(
		&c.ContractAddress, &c.Name, &c.Description, &c.OwnerAddress,
		&c.TokenPrice, &c.TargetAmount, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CompanyMetadata{}, fmt.Errorf("%w: company %s", ErrNotFound, contractAddress)
	}
	if err != nil {
		return models.CompanyMetadata{}, fmt.Errorf("%w: failed to get company: %v", ErrPersistence, err)
	}
	return c, nil
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellark/stellark-go/models"
)

func testCompany(contractAddress string, createdAt time.Time) models.CompanyMetadata {
	return models.CompanyMetadata{
		ContractAddress: contractAddress,
		Name:            "Acme Robotics",
		Description:     "industrial robotics",
		OwnerAddress:    "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF",
		TokenPrice:      2.5,
		TargetAmount:    50000,
		CreatedAt:       createdAt,
	}
}

func TestSaveAndGetCompany(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	company := testCompany("CAFJZQWSED6YAWZU3GWRTOCNPPCGBN32L7QV43XX5LZLFTK6JLN34DLN", time.Now().UTC())

	err := db.SaveCompany(ctx, company)
	require.NoError(t, err)

	got, err := db.GetCompany(ctx, company.ContractAddress)
	require.NoError(t, err)

	assert.Equal(t, company.ContractAddress, got.ContractAddress)
	assert.Equal(t, company.Name, got.Name)
	assert.Equal(t, company.Description, got.Description)
	assert.Equal(t, company.OwnerAddress, got.OwnerAddress)
	assert.Equal(t, company.TokenPrice, got.TokenPrice)
	assert.Equal(t, company.TargetAmount, got.TargetAmount)
	assert.WithinDuration(t, company.CreatedAt, got.CreatedAt, time.Second)
}

func TestGetCompanyNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetCompany(context.Background(), "CNONEXISTENTCONTRACTADDRESS")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPersistence, "a missing row is a valid outcome, not a persistence failure")
}

func TestListCompaniesNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	// inserted out of creation order on purpose
	middle := testCompany("CMIDDLE", base.Add(10*time.Minute))
	oldest := testCompany("COLDEST", base)
	newest := testCompany("CNEWEST", base.Add(20*time.Minute))
	for _, c := range []models.CompanyMetadata{middle, oldest, newest} {
		require.NoError(t, db.SaveCompany(ctx, c))
	}

	companies, err := db.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 3)

	assert.Equal(t, "CNEWEST", companies[0].ContractAddress)
	assert.Equal(t, "CMIDDLE", companies[1].ContractAddress)
	assert.Equal(t, "COLDEST", companies[2].ContractAddress)
}

func TestListCompaniesEmpty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	companies, err := db.ListCompanies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, companies)
	assert.NotNil(t, companies)
}

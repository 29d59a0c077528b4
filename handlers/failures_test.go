package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stellark/stellark-go/models"
	"github.com/stellark/stellark-go/services"
)

// failingStore errors on every operation, standing in for a lost database.
type failingStore struct {
	err error
}

func (s *failingStore) SaveCompany(context.Context, models.CompanyMetadata) error { return s.err }

func (s *failingStore) ListCompanies(context.Context) ([]models.CompanyMetadata, error) {
	return nil, s.err
}

func (s *failingStore) GetCompany(context.Context, string) (models.CompanyMetadata, error) {
	return models.CompanyMetadata{}, s.err
}

func (s *failingStore) CreateResaleListing(context.Context, models.ResaleListing) (models.ResaleListing, error) {
	return models.ResaleListing{}, s.err
}

func (s *failingStore) ListActiveResaleListings(context.Context) ([]models.ResaleListing, error) {
	return nil, s.err
}

func (s *failingStore) GetResaleListing(context.Context, string) (models.ResaleListing, error) {
	return models.ResaleListing{}, s.err
}

func (s *failingStore) UpdateResaleListingQuantity(context.Context, string, int64) error {
	return s.err
}

func (s *failingStore) DeactivateResaleListing(context.Context, string) error { return s.err }

func TestCompanyListFailureIsLoggedAndSurfaced(t *testing.T) {
	storeErr := errors.New("connection refused")
	market := services.NewMarketService(&failingStore{err: storeErr}, nil, zerolog.Nop())

	var logs bytes.Buffer
	h := NewCompanyHandler(market, nil, zerolog.New(&logs))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/companies", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to list companies")
	assert.Contains(t, rec.Body.String(), "connection refused")

	assert.Contains(t, logs.String(), "failed to list companies")
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), `"component":"companies"`)
}

func TestResaleListFailureIsLoggedAndSurfaced(t *testing.T) {
	storeErr := errors.New("connection refused")
	market := services.NewMarketService(&failingStore{err: storeErr}, nil, zerolog.Nop())

	var logs bytes.Buffer
	h := NewResaleHandler(market, nil, zerolog.New(&logs))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/resale-listings", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to list resale listings")

	assert.Contains(t, logs.String(), "failed to list resale listings")
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), `"component":"resale"`)
}

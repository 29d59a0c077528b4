// Package services reconciles off-chain metadata with ground-truth ledger
// state and drives the metadata store in response to on-chain outcomes.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stellark/stellark-go/contract"
	"github.com/stellark/stellark-go/models"
	"github.com/stellark/stellark-go/soroban"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInactiveListing    = errors.New("listing is not active")
	ErrInsufficientTokens = errors.New("not enough tokens available")
)

// MetadataStore is the off-chain CRUD facade the service drives.
type MetadataStore interface {
	SaveCompany(ctx context.Context, company models.CompanyMetadata) error
	ListCompanies(ctx context.Context) ([]models.CompanyMetadata, error)
	GetCompany(ctx context.Context, contractAddress string) (models.CompanyMetadata, error)
	CreateResaleListing(ctx context.Context, listing models.ResaleListing) (models.ResaleListing, error)
	ListActiveResaleListings(ctx context.Context) ([]models.ResaleListing, error)
	GetResaleListing(ctx context.Context, id string) (models.ResaleListing, error)
	UpdateResaleListingQuantity(ctx context.Context, id string, newQuantity int64) error
	DeactivateResaleListing(ctx context.Context, id string) error
}

// TokenClient is the per-contract on-chain surface the service consumes.
type TokenClient interface {
	InitCompany(ctx context.Context, signer soroban.Signer, p contract.InitCompanyParams) error
	Mint(ctx context.Context, signer soroban.Signer, amount int64) error
	TransferWithPayment(ctx context.Context, signer soroban.Signer, seller string, amount int64, pricePerToken float64) error
	BalanceOf(ctx context.Context, holder string) (int64, error)
	GetCompanyInfo(ctx context.Context) (models.CompanyOnChainInfo, error)
}

// TokenFactory opens a TokenClient for a deployed contract instance.
type TokenFactory func(contractAddress string) (TokenClient, error)

type MarketService struct {
	store  MetadataStore
	tokens TokenFactory
	log    zerolog.Logger
}

func NewMarketService(store MetadataStore, tokens TokenFactory, log zerolog.Logger) *MarketService {
	return &MarketService{
		store:  store,
		tokens: tokens,
		log:    log.With().Str("component", "market").Logger(),
	}
}

// CreateCompany initializes the company on-chain and, only after the call
// confirms, records the discovery metadata off-chain.
func (s *MarketService) CreateCompany(ctx context.Context, signer soroban.Signer, contractAddress string, p contract.InitCompanyParams) (models.CompanyMetadata, error) {
	token, err := s.tokens(contractAddress)
	if err != nil {
		return models.CompanyMetadata{}, err
	}
	if err := token.InitCompany(ctx, signer, p); err != nil {
		return models.CompanyMetadata{}, err
	}

	metadata := models.CompanyMetadata{
		ContractAddress: contractAddress,
		Name:            p.Name,
		Description:     p.Description,
		OwnerAddress:    p.Owner,
		TokenPrice:      p.TokenPrice,
		TargetAmount:    p.TargetAmount,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.SaveCompany(ctx, metadata); err != nil {
		// The contract is initialized but the listing is not discoverable.
		s.log.Error().Err(err).Str("contract", contractAddress).
			Msg("company initialized on-chain but metadata save failed")
		return models.CompanyMetadata{}, err
	}
	return metadata, nil
}

// ListCompanies returns the off-chain directory, newest first.
func (s *MarketService) ListCompanies(ctx context.Context) ([]models.CompanyMetadata, error) {
	return s.store.ListCompanies(ctx)
}

// CompanyOverview joins the off-chain listing with fresh on-chain state and
// the derived sale figures.
func (s *MarketService) CompanyOverview(ctx context.Context, contractAddress string) (models.CompanyOverview, error) {
	metadata, err := s.store.GetCompany(ctx, contractAddress)
	if err != nil {
		return models.CompanyOverview{}, err
	}

	token, err := s.tokens(contractAddress)
	if err != nil {
		return models.CompanyOverview{}, err
	}
	info, err := token.GetCompanyInfo(ctx)
	if err != nil {
		return models.CompanyOverview{}, err
	}
	ownerBalance, err := token.BalanceOf(ctx, info.Owner)
	if err != nil {
		return models.CompanyOverview{}, err
	}

	sold := TokensSold(info, ownerBalance)
	raised := float64(sold) * info.TokenPrice

	overview := models.CompanyOverview{
		Metadata:     metadata,
		OnChain:      info,
		TokensSold:   sold,
		AmountRaised: raised,
	}
	if info.TargetAmount > 0 {
		overview.Progress = raised / info.TargetAmount
	}
	return overview, nil
}

// TokensSold derives sale volume as totalSupply - ownerBalance. This assumes
// the owner never moves tokens outside the sale flow; an out-of-band owner
// transfer would be misreported as a sale.
func TokensSold(info models.CompanyOnChainInfo, ownerBalance int64) int64 {
	return info.TotalSupply - ownerBalance
}

// BuyFromCompany purchases tokens from the owner's allocation. The contract
// debits the XLM payment from the signer.
func (s *MarketService) BuyFromCompany(ctx context.Context, signer soroban.Signer, contractAddress string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}
	token, err := s.tokens(contractAddress)
	if err != nil {
		return err
	}
	return token.Mint(ctx, signer, amount)
}

// ListForResale creates a secondary-market listing after checking that the
// seller actually holds the tokens on-chain.
func (s *MarketService) ListForResale(ctx context.Context, seller, contractAddress string, tokens int64, pricePerToken float64) (models.ResaleListing, error) {
	if tokens <= 0 || pricePerToken <= 0 {
		return models.ResaleListing{}, ErrInvalidQuantity
	}

	token, err := s.tokens(contractAddress)
	if err != nil {
		return models.ResaleListing{}, err
	}
	balance, err := token.BalanceOf(ctx, seller)
	if err != nil {
		return models.ResaleListing{}, err
	}
	if balance < tokens {
		return models.ResaleListing{}, fmt.Errorf("%w: balance %d, listing %d", ErrInsufficientTokens, balance, tokens)
	}

	return s.store.CreateResaleListing(ctx, models.ResaleListing{
		ContractAddress: contractAddress,
		SellerAddress:   seller,
		TokensForSale:   tokens,
		PricePerToken:   pricePerToken,
	})
}

// ListActiveResaleListings returns open listings, newest first.
func (s *MarketService) ListActiveResaleListings(ctx context.Context) ([]models.ResaleListing, error) {
	return s.store.ListActiveResaleListings(ctx)
}

// PurchaseFromListing buys amount tokens from a resale listing. Oversized
// purchases are rejected before anything is submitted; the off-chain store
// has no independent guard of its own. After the on-chain transfer confirms,
// the listing is settled: partial fills shrink it, a full fill deactivates it.
func (s *MarketService) PurchaseFromListing(ctx context.Context, signer soroban.Signer, listingID string, amount int64) (models.ResaleListing, error) {
	if amount <= 0 {
		return models.ResaleListing{}, ErrInvalidQuantity
	}

	listing, err := s.store.GetResaleListing(ctx, listingID)
	if err != nil {
		return models.ResaleListing{}, err
	}
	if !listing.IsActive {
		return models.ResaleListing{}, ErrInactiveListing
	}
	if amount > listing.TokensForSale {
		return models.ResaleListing{}, fmt.Errorf("%w: listing has %d, requested %d", ErrInsufficientTokens, listing.TokensForSale, amount)
	}

	token, err := s.tokens(listing.ContractAddress)
	if err != nil {
		return models.ResaleListing{}, err
	}
	if err := token.TransferWithPayment(ctx, signer, listing.SellerAddress, amount, listing.PricePerToken); err != nil {
		return models.ResaleListing{}, err
	}

	if err := s.settle(ctx, &listing, amount); err != nil {
		// The transfer is already confirmed on-chain; only discovery state
		// is stale at this point.
		s.log.Error().Err(err).Str("listing", listing.ID).
			Msg("on-chain transfer confirmed but listing settlement failed")
		return models.ResaleListing{}, err
	}
	return listing, nil
}

func (s *MarketService) settle(ctx context.Context, listing *models.ResaleListing, sold int64) error {
	if sold < listing.TokensForSale {
		listing.TokensForSale -= sold
		return s.store.UpdateResaleListingQuantity(ctx, listing.ID, listing.TokensForSale)
	}
	listing.TokensForSale = 0
	listing.IsActive = false
	return s.store.DeactivateResaleListing(ctx, listing.ID)
}

// Portfolio lists the holder's nonzero balances across all companies and the
// summed value at each company's listed token price.
func (s *MarketService) Portfolio(ctx context.Context, holder string) ([]models.Holding, float64, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, 0, err
	}

	holdings := []models.Holding{}
	total := 0.0
	for _, company := range companies {
		token, err := s.tokens(company.ContractAddress)
		if err != nil {
			return nil, 0, err
		}
		balance, err := token.BalanceOf(ctx, holder)
		if err != nil {
			return nil, 0, err
		}
		if balance == 0 {
			continue
		}
		value := float64(balance) * company.TokenPrice
		holdings = append(holdings, models.Holding{
			ContractAddress: company.ContractAddress,
			CompanyName:     company.Name,
			Balance:         balance,
			TokenPrice:      company.TokenPrice,
			Value:           value,
		})
		total += value
	}
	return holdings, total, nil
}

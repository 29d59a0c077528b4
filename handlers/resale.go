package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stellark/stellark-go/services"
	"github.com/stellark/stellark-go/storage"
)

// ResaleHandler exposes the secondary-market endpoints.
type ResaleHandler struct {
	market *services.MarketService
	signer signerResolver
	log    zerolog.Logger
}

func NewResaleHandler(market *services.MarketService, signer signerResolver, log zerolog.Logger) *ResaleHandler {
	return &ResaleHandler{market: market, signer: signer, log: log.With().Str("component", "resale").Logger()}
}

// fail logs the failure before surfacing it in the response.
func (h *ResaleHandler) fail(w http.ResponseWriter, message string, err error) {
	h.log.Error().Err(err).Msg(message)
	writeError(w, message, err)
}

type createListingRequest struct {
	ContractAddress string  `json:"contract_address"`
	SellerAddress   string  `json:"seller_address"`
	TokensForSale   int64   `json:"tokens_for_sale"`
	PricePerToken   float64 `json:"price_per_token"`
}

func (h *ResaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "invalid request body", err)
		return
	}

	listing, err := h.market.ListForResale(r.Context(), req.SellerAddress, req.ContractAddress, req.TokensForSale, req.PricePerToken)
	if err != nil {
		h.fail(w, "failed to create listing", err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *ResaleHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.market.ListActiveResaleListings(r.Context())
	if err != nil {
		h.fail(w, "failed to list resale listings", err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

type purchaseRequest struct {
	Amount     int64  `json:"amount"`
	SecretSeed string `json:"secret_seed,omitempty"`
}

func (h *ResaleHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "invalid request body", err)
		return
	}
	signer, err := h.signer(req.SecretSeed)
	if err != nil {
		h.fail(w, "no usable signer", err)
		return
	}

	listing, err := h.market.PurchaseFromListing(r.Context(), signer, listingID, req.Amount)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "listing not found",
		})
		return
	}
	if err != nil {
		h.fail(w, "purchase failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"listing": listing,
	})
}

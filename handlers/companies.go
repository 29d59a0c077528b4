package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stellark/stellark-go/contract"
	"github.com/stellark/stellark-go/services"
	"github.com/stellark/stellark-go/soroban"
	"github.com/stellark/stellark-go/storage"
)

// CompanyHandler exposes company listing and primary-sale endpoints.
type CompanyHandler struct {
	market *services.MarketService
	signer signerResolver
	log    zerolog.Logger
}

// signerResolver turns a request-supplied secret seed into a Signer, falling
// back to the operator identity when the seed is absent. Real end users sign
// in their wallet; seeds in request bodies are for the developer-facing flow.
type signerResolver func(secretSeed string) (soroban.Signer, error)

func NewCompanyHandler(market *services.MarketService, signer signerResolver, log zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{market: market, signer: signer, log: log.With().Str("component", "companies").Logger()}
}

// fail logs the failure before surfacing it in the response.
func (h *CompanyHandler) fail(w http.ResponseWriter, message string, err error) {
	h.log.Error().Err(err).Msg(message)
	writeError(w, message, err)
}

type createCompanyRequest struct {
	ContractAddress string  `json:"contract_address"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	TotalSupply     int64   `json:"total_supply"`
	Owner           string  `json:"owner"`
	EquityPercent   int64   `json:"equity_percent"`
	Description     string  `json:"description"`
	TokenPrice      float64 `json:"token_price"`
	TargetAmount    float64 `json:"target_amount"`
	SecretSeed      string  `json:"secret_seed,omitempty"`
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "invalid request body", err)
		return
	}
	signer, err := h.signer(req.SecretSeed)
	if err != nil {
		h.fail(w, "no usable signer", err)
		return
	}

	metadata, err := h.market.CreateCompany(r.Context(), signer, req.ContractAddress, contract.InitCompanyParams{
		Name:          req.Name,
		Symbol:        req.Symbol,
		TotalSupply:   req.TotalSupply,
		Owner:         req.Owner,
		EquityPercent: req.EquityPercent,
		Description:   req.Description,
		TokenPrice:    req.TokenPrice,
		TargetAmount:  req.TargetAmount,
	})
	if err != nil {
		h.fail(w, "failed to create company", err)
		return
	}
	writeJSON(w, http.StatusCreated, metadata)
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.market.ListCompanies(r.Context())
	if err != nil {
		h.fail(w, "failed to list companies", err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) Overview(w http.ResponseWriter, r *http.Request) {
	contractAddress := chi.URLParam(r, "contractAddress")
	overview, err := h.market.CompanyOverview(r.Context(), contractAddress)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "company not found",
		})
		return
	}
	if err != nil {
		h.fail(w, "failed to load company", err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

type buyRequest struct {
	Amount     int64  `json:"amount"`
	SecretSeed string `json:"secret_seed,omitempty"`
}

func (h *CompanyHandler) Buy(w http.ResponseWriter, r *http.Request) {
	contractAddress := chi.URLParam(r, "contractAddress")

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "invalid request body", err)
		return
	}
	signer, err := h.signer(req.SecretSeed)
	if err != nil {
		h.fail(w, "no usable signer", err)
		return
	}

	if err := h.market.BuyFromCompany(r.Context(), signer, contractAddress, req.Amount); err != nil {
		h.fail(w, "purchase failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *CompanyHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	holder := chi.URLParam(r, "address")
	holdings, total, err := h.market.Portfolio(r.Context(), holder)
	if err != nil {
		h.fail(w, "failed to load portfolio", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"holdings":    holdings,
		"total_value": total,
	})
}

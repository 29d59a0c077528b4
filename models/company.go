package models

import "time"

// CompanyMetadata is the off-chain discovery record for a listed company.
// The contract address is the join key to ledger state; the store never
// verifies that the contract actually exists on-chain.
type CompanyMetadata struct {
	ContractAddress string    `json:"contract_address" db:"contract_address"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	OwnerAddress    string    `json:"owner_address" db:"owner_address"`
	TokenPrice      float64   `json:"token_price" db:"token_price"`
	TargetAmount    float64   `json:"target_amount" db:"target_amount"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// CompanyOnChainInfo mirrors the contract's company_info storage entry.
// Always re-read from the ledger per query, never cached.
type CompanyOnChainInfo struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	TotalSupply   int64   `json:"total_supply"`
	Owner         string  `json:"owner"`
	EquityPercent int64   `json:"equity_percent"`
	Description   string  `json:"description"`
	TokenPrice    float64 `json:"token_price"`
	TargetAmount  float64 `json:"target_amount"`
}

// CompanyOverview combines the off-chain listing with derived on-chain figures.
type CompanyOverview struct {
	Metadata     CompanyMetadata    `json:"metadata"`
	OnChain      CompanyOnChainInfo `json:"on_chain"`
	TokensSold   int64              `json:"tokens_sold"`
	AmountRaised float64            `json:"amount_raised"`
	Progress     float64            `json:"progress"`
}

// Holding is one nonzero balance in an investor's portfolio.
type Holding struct {
	ContractAddress string  `json:"contract_address"`
	CompanyName     string  `json:"company_name"`
	Balance         int64   `json:"balance"`
	TokenPrice      float64 `json:"token_price"`
	Value           float64 `json:"value"`
}

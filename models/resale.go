package models

import "time"

// ResaleListing is a secondary-market offer of already issued tokens.
// Rows are never deleted: an exhausted listing is flipped to inactive.
// Invariant: TokensForSale > 0 while IsActive is true.
type ResaleListing struct {
	ID              string    `json:"id" db:"id"`
	ContractAddress string    `json:"contract_address" db:"contract_address"`
	SellerAddress   string    `json:"seller_address" db:"seller_address"`
	TokensForSale   int64     `json:"tokens_for_sale" db:"tokens_for_sale"`
	PricePerToken   float64   `json:"price_per_token" db:"price_per_token"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

package models

import "github.com/shopspring/decimal"

// MenuItem is the catalog entry the ledger copies into an OrderItem.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id"`
	Type        ItemType        `json:"type"`
	Available   bool            `json:"available"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem keeps its own copy of name, price and type taken from the menu when
// the line was added, so later menu edits never touch an open order.
//
// ServedQuantity counts units of a pending line that were already served
// before more of the same item was ordered. It is zero once the line is served.
type OrderItem struct {
	ID             string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID        string          `gorm:"type:varchar(64);not null;index" json:"order_id"`
	MenuItemID     string          `gorm:"type:varchar(64);not null" json:"menu_item_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Type           ItemType        `gorm:"type:varchar(10);not null" json:"type"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	ServedQuantity int             `gorm:"not null;default:0" json:"served_quantity,omitempty"`
	Status         ItemStatus      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	Position       int             `gorm:"not null" json:"-"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

// ToPrepare is the number of units still to be made for a pending line.
func (i OrderItem) ToPrepare() int {
	if i.Status == ItemStatusServed {
		return 0
	}
	if n := i.Quantity - i.ServedQuantity; n > 0 {
		return n
	}
	return i.Quantity
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableID       string          `gorm:"type:varchar(64);not null;index" json:"table_id"`
	TableNumber   int             `gorm:"not null" json:"table_number"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	FoodStatus    OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"food_status"`
	DrinkStatus   OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"drink_status"`
	PaymentMethod *PaymentMethod  `gorm:"type:varchar(10)" json:"payment_method,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// DepartmentStatus returns the stored status of one department.
func (o *Order) DepartmentStatus(t ItemType) OrderStatus {
	if t == ItemTypeDrink {
		return o.DrinkStatus
	}
	return o.FoodStatus
}

// ItemsOf returns the lines of one department, in order.
func (o *Order) ItemsOf(t ItemType) []OrderItem {
	var items []OrderItem
	for _, item := range o.Items {
		if item.Type == t {
			items = append(items, item)
		}
	}
	return items
}

// HasType reports whether the order has at least one line of the department.
func (o *Order) HasType(t ItemType) bool {
	for _, item := range o.Items {
		if item.Type == t {
			return true
		}
	}
	return false
}

func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// Clone deep-copies the order so callers never alias ledger state.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.PaymentMethod != nil {
		m := *o.PaymentMethod
		c.PaymentMethod = &m
	}
	return c
}

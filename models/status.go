package models

// ItemType tells which department prepares an item.
type ItemType string

const (
	ItemTypeFood  ItemType = "food"
	ItemTypeDrink ItemType = "drink"
)

// Departments lists every department in display order.
var Departments = []ItemType{ItemTypeFood, ItemTypeDrink}

func (t ItemType) Valid() bool {
	return t == ItemTypeFood || t == ItemTypeDrink
}

type ItemStatus string

const (
	ItemStatusPending ItemStatus = "pending"
	ItemStatusServed  ItemStatus = "served"
)

func (s ItemStatus) Valid() bool {
	return s == ItemStatusPending || s == ItemStatusServed
}

// OrderStatus is shared by the aggregate status and the two department statuses.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusServed  OrderStatus = "served"
	OrderStatusPaid    OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusServed, OrderStatusPaid:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

type TableStatus string

const (
	TableStatusAvailable  TableStatus = "available"
	TableStatusOccupied   TableStatus = "occupied"
	TableStatusReserved   TableStatus = "reserved"
	TableStatusReadyToPay TableStatus = "readyToPay"
)

// TableStatuses lists every table status, used for dashboard counts.
var TableStatuses = []TableStatus{
	TableStatusAvailable,
	TableStatusOccupied,
	TableStatusReserved,
	TableStatusReadyToPay,
}

func (s TableStatus) Valid() bool {
	switch s {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusReadyToPay:
		return true
	}
	return false
}

// HoldsOrder reports whether a table in this status must reference an order.
func (s TableStatus) HoldsOrder() bool {
	return s == TableStatusOccupied || s == TableStatusReadyToPay
}

package services

import "github.com/yeremiapane/restaurant-floor/models"

// OrderStore persists the whole order collection. SaveOrders replaces the
// stored collection with the given one.
type OrderStore interface {
	LoadOrders() ([]models.Order, error)
	SaveOrders(orders []models.Order) error
}

// TableStore persists the whole table collection.
type TableStore interface {
	LoadTables() ([]models.Table, error)
	SaveTables(tables []models.Table) error
}

// TableTransitioner is the only write path the ledger uses against tables.
type TableTransitioner interface {
	TransitionTable(tableID string, status models.TableStatus, orderID *string) error
}

package database

import (
	"sync"

	"github.com/yeremiapane/restaurant-floor/models"
)

// MemoryStore keeps both collections in process memory. State is lost on exit.
type MemoryStore struct {
	mu     sync.Mutex
	orders []models.Order
	tables []models.Table
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadOrders() ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrders(s.orders), nil
}

func (s *MemoryStore) SaveOrders(orders []models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = cloneOrders(orders)
	return nil
}

func (s *MemoryStore) LoadTables() ([]models.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTables(s.tables), nil
}

func (s *MemoryStore) SaveTables(tables []models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = cloneTables(tables)
	return nil
}

func cloneOrders(in []models.Order) []models.Order {
	out := make([]models.Order, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}

func cloneTables(in []models.Table) []models.Table {
	out := make([]models.Table, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

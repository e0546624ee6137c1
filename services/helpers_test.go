package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-floor/models"
)

var errStoreDown = errors.New("store down")

// fakeStore persists both collections in memory and can be told to fail.
type fakeStore struct {
	mu         sync.Mutex
	orders     []models.Order
	tables     []models.Table
	failOrders bool
	failTables bool
	orderSaves int
}

func (s *fakeStore) LoadOrders() ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out, nil
}

func (s *fakeStore) SaveOrders(orders []models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOrders {
		return errStoreDown
	}
	s.orderSaves++
	s.orders = make([]models.Order, len(orders))
	for i, o := range orders {
		s.orders[i] = o.Clone()
	}
	return nil
}

func (s *fakeStore) LoadTables() ([]models.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Table, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.Clone()
	}
	return out, nil
}

func (s *fakeStore) SaveTables(tables []models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTables {
		return errStoreDown
	}
	s.tables = make([]models.Table, len(tables))
	for i, t := range tables {
		s.tables[i] = t.Clone()
	}
	return nil
}

type transition struct {
	TableID string
	Status  models.TableStatus
	OrderID *string
}

// recordingTransitioner records every transition and forwards it when next is set.
type recordingTransitioner struct {
	next  TableTransitioner
	err   error
	calls []transition
}

func (r *recordingTransitioner) TransitionTable(tableID string, status models.TableStatus, orderID *string) error {
	var ref *string
	if orderID != nil {
		id := *orderID
		ref = &id
	}
	r.calls = append(r.calls, transition{TableID: tableID, Status: status, OrderID: ref})
	if r.err != nil {
		return r.err
	}
	if r.next != nil {
		return r.next.TransitionTable(tableID, status, orderID)
	}
	return nil
}

func (r *recordingTransitioner) last() transition {
	if len(r.calls) == 0 {
		return transition{}
	}
	return r.calls[len(r.calls)-1]
}

type printEvent struct {
	Kind  string
	Order models.Order
}

type recordingSink struct {
	events []printEvent
}

func (s *recordingSink) OrderPlaced(o models.Order) { s.events = append(s.events, printEvent{"placed", o}) }
func (s *recordingSink) OrderAmended(o models.Order) { s.events = append(s.events, printEvent{"amended", o}) }
func (s *recordingSink) PaymentCompleted(o models.Order) { s.events = append(s.events, printEvent{"paid", o}) }

func (s *recordingSink) kinds() []string {
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

type recordingBroadcaster struct {
	orders  []models.Order
	deleted []string
	tables  []TableChange
}

func (b *recordingBroadcaster) BroadcastOrder(o models.Order) { b.orders = append(b.orders, o) }
func (b *recordingBroadcaster) BroadcastOrderDeleted(id string) { b.deleted = append(b.deleted, id) }
func (b *recordingBroadcaster) BroadcastTable(c TableChange, _ models.Table) { b.tables = append(b.tables, c) }

// testClock hands out strictly increasing times.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func food(id string, price string) models.MenuItem {
	return models.MenuItem{ID: id, Name: id, Price: decimal.RequireFromString(price), Type: models.ItemTypeFood, Available: true}
}

func drink(id string, price string) models.MenuItem {
	return models.MenuItem{ID: id, Name: id, Price: decimal.RequireFromString(price), Type: models.ItemTypeDrink, Available: true}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// floor wires a ledger to a real registry, both over one fake store.
type floor struct {
	store     *fakeStore
	registry  *TableRegistry
	tables    *recordingTransitioner
	ledger    *OrderLedger
	sink      *recordingSink
	broadcast *recordingBroadcaster
}

func newFloor(t *testing.T) *floor {
	t.Helper()
	f := &floor{
		store:     &fakeStore{},
		sink:      &recordingSink{},
		broadcast: &recordingBroadcaster{},
	}
	clock := newTestClock()

	registry, err := NewTableRegistry(f.store, WithTableBroadcaster(f.broadcast), WithRegistryClock(clock.Now))
	require.NoError(t, err)
	f.registry = registry
	f.tables = &recordingTransitioner{next: registry}

	ledger, err := NewOrderLedger(f.store, f.tables,
		WithPrintSink(f.sink),
		WithOrderBroadcaster(f.broadcast),
		WithLedgerClock(clock.Now),
	)
	require.NoError(t, err)
	f.ledger = ledger
	return f
}

func (f *floor) table(t *testing.T, id string) models.Table {
	t.Helper()
	table, err := f.registry.Table(id)
	require.NoError(t, err)
	return table
}

func (f *floor) order(t *testing.T, id string) models.Order {
	t.Helper()
	order, err := f.ledger.Order(id)
	require.NoError(t, err)
	return order
}

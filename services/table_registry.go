package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// TableRegistry owns the tables and their occupancy status. Status changes
// other than reservations come from the order ledger through TransitionTable;
// the registry trusts its caller to sequence them.
type TableRegistry struct {
	mu        sync.Mutex
	tables    []models.Table
	store     TableStore
	broadcast Broadcaster
	now       func() time.Time
}

type RegistryOption func(*TableRegistry)

func WithTableBroadcaster(b Broadcaster) RegistryOption {
	return func(r *TableRegistry) {
		if b != nil {
			r.broadcast = b
		}
	}
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *TableRegistry) {
		r.now = now
	}
}

// NewTableRegistry loads every table from store.
func NewTableRegistry(store TableStore, opts ...RegistryOption) (*TableRegistry, error) {
	tables, err := store.LoadTables()
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	r := &TableRegistry{
		tables:    tables,
		store:     store,
		broadcast: noopBroadcaster{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Seed stores tables only when the registry is empty. Returns how many were added.
func (r *TableRegistry) Seed(tables []models.Table) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.tables) > 0 || len(tables) == 0 {
		return 0, nil
	}
	next := make([]models.Table, 0, len(tables))
	seen := map[int]bool{}
	for _, t := range tables {
		if err := validateStruct(tableInput{Number: t.Number, Seats: t.Seats}); err != nil {
			return 0, err
		}
		if seen[t.Number] {
			return 0, fmt.Errorf("table %d: %w", t.Number, ErrDuplicateTableNumber)
		}
		seen[t.Number] = true
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.Status = models.TableStatusAvailable
		t.OrderID = nil
		t.CreatedAt = r.now()
		t.UpdatedAt = t.CreatedAt
		next = append(next, t)
	}
	if err := r.commit(next); err != nil {
		return 0, err
	}
	return len(next), nil
}

func (r *TableRegistry) AddTable(number, seats int) (models.Table, error) {
	if err := validateStruct(tableInput{Number: number, Seats: seats}); err != nil {
		return models.Table{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByNumber(number) >= 0 {
		return models.Table{}, fmt.Errorf("table %d: %w", number, ErrDuplicateTableNumber)
	}

	now := r.now()
	table := models.Table{
		ID:        uuid.NewString(),
		Number:    number,
		Seats:     seats,
		Status:    models.TableStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	next := append(r.snapshot(), table)
	if err := r.commit(next); err != nil {
		return models.Table{}, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"table_id": table.ID, "number": number, "seats": seats}).
		Info("table created")
	r.broadcast.BroadcastTable(TableCreated, table.Clone())
	return table.Clone(), nil
}

// UpdateTable renumbers or reseats a table. Orders keep the number they were
// opened with.
func (r *TableRegistry) UpdateTable(id string, number, seats int) (models.Table, error) {
	if err := validateStruct(tableInput{Number: number, Seats: seats}); err != nil {
		return models.Table{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.find(id)
	if idx < 0 {
		return models.Table{}, fmt.Errorf("table %s: %w", id, ErrTableNotFound)
	}
	if other := r.findByNumber(number); other >= 0 && other != idx {
		return models.Table{}, fmt.Errorf("table %d: %w", number, ErrDuplicateTableNumber)
	}

	table := r.tables[idx].Clone()
	table.Number = number
	table.Seats = seats
	table.UpdatedAt = r.now()

	next := r.snapshot()
	next[idx] = table
	if err := r.commit(next); err != nil {
		return models.Table{}, err
	}

	r.broadcast.BroadcastTable(TableUpdated, table.Clone())
	return table.Clone(), nil
}

// DeleteTable refuses tables that are occupied, reserved or waiting for payment.
func (r *TableRegistry) DeleteTable(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.find(id)
	if idx < 0 {
		return fmt.Errorf("table %s: %w", id, ErrTableNotFound)
	}
	table := r.tables[idx]
	if table.Status != models.TableStatusAvailable {
		return fmt.Errorf("table %d is %s: %w", table.Number, table.Status, ErrTableInUse)
	}

	next := make([]models.Table, 0, len(r.tables)-1)
	next = append(next, r.tables[:idx]...)
	next = append(next, r.tables[idx+1:]...)
	if err := r.commit(next); err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"table_id": id, "number": table.Number}).Info("table deleted")
	r.broadcast.BroadcastTable(TableDeleted, table.Clone())
	return nil
}

// TransitionTable sets the status of a table. For occupied and readyToPay the
// order reference is replaced when orderID is given and kept otherwise; any
// other status clears it. Leaving reserved clears the reservation.
func (r *TableRegistry) TransitionTable(id string, status models.TableStatus, orderID *string) error {
	if !status.Valid() {
		return ValidationError{Field: "status", Message: fmt.Sprintf("unknown table status %q", status)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.find(id)
	if idx < 0 {
		return fmt.Errorf("table %s: %w", id, ErrTableNotFound)
	}

	table := r.tables[idx].Clone()
	if status.HoldsOrder() {
		if orderID != nil {
			ref := *orderID
			table.OrderID = &ref
		}
		if table.OrderID == nil {
			return ValidationError{Field: "order_id", Message: fmt.Sprintf("required for status %s", status)}
		}
	} else {
		table.OrderID = nil
	}
	if status != models.TableStatusReserved {
		table.ReservationName = nil
		table.ReservationTime = nil
	}
	from := table.Status
	table.Status = status
	table.UpdatedAt = r.now()

	next := r.snapshot()
	next[idx] = table
	if err := r.commit(next); err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": id,
		"number":   table.Number,
		"from":     from,
		"to":       status,
	}).Info("table status changed")
	r.broadcast.BroadcastTable(TableUpdated, table.Clone())
	return nil
}

// ReserveTable moves an available table to reserved.
func (r *TableRegistry) ReserveTable(id, name string, at time.Time) (models.Table, error) {
	name = strings.TrimSpace(name)
	if err := validateStruct(reservationInput{Name: name}); err != nil {
		return models.Table{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.find(id)
	if idx < 0 {
		return models.Table{}, fmt.Errorf("table %s: %w", id, ErrTableNotFound)
	}
	table := r.tables[idx].Clone()
	if table.Status != models.TableStatusAvailable {
		return models.Table{}, fmt.Errorf("reserve table %d from %s: %w", table.Number, table.Status, ErrInvalidTransition)
	}

	table.Status = models.TableStatusReserved
	table.ReservationName = &name
	table.ReservationTime = &at
	table.UpdatedAt = r.now()

	next := r.snapshot()
	next[idx] = table
	if err := r.commit(next); err != nil {
		return models.Table{}, err
	}

	r.broadcast.BroadcastTable(TableUpdated, table.Clone())
	return table.Clone(), nil
}

// CancelReservation moves a reserved table back to available.
func (r *TableRegistry) CancelReservation(id string) (models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.find(id)
	if idx < 0 {
		return models.Table{}, fmt.Errorf("table %s: %w", id, ErrTableNotFound)
	}
	table := r.tables[idx].Clone()
	if table.Status != models.TableStatusReserved {
		return models.Table{}, fmt.Errorf("table %d is %s, not reserved: %w", table.Number, table.Status, ErrInvalidTransition)
	}

	table.Status = models.TableStatusAvailable
	table.ReservationName = nil
	table.ReservationTime = nil
	table.UpdatedAt = r.now()

	next := r.snapshot()
	next[idx] = table
	if err := r.commit(next); err != nil {
		return models.Table{}, err
	}

	r.broadcast.BroadcastTable(TableUpdated, table.Clone())
	return table.Clone(), nil
}

func (r *TableRegistry) Table(id string) (models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.find(id)
	if idx < 0 {
		return models.Table{}, fmt.Errorf("table %s: %w", id, ErrTableNotFound)
	}
	return r.tables[idx].Clone(), nil
}

func (r *TableRegistry) TableByNumber(number int) (models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findByNumber(number)
	if idx < 0 {
		return models.Table{}, fmt.Errorf("table %d: %w", number, ErrTableNotFound)
	}
	return r.tables[idx].Clone(), nil
}

// Tables lists every table ordered by number.
func (r *TableRegistry) Tables() []models.Table {
	return r.filter(func(models.Table) bool { return true })
}

func (r *TableRegistry) TablesByStatus(status models.TableStatus) []models.Table {
	return r.filter(func(t models.Table) bool { return t.Status == status })
}

// StatusCounts counts tables per status; every status is present.
func (r *TableRegistry) StatusCounts() map[models.TableStatus]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[models.TableStatus]int, len(models.TableStatuses))
	for _, s := range models.TableStatuses {
		counts[s] = 0
	}
	for _, t := range r.tables {
		counts[t.Status]++
	}
	return counts
}

func (r *TableRegistry) filter(keep func(models.Table) bool) []models.Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Table, 0, len(r.tables))
	for _, t := range r.tables {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (r *TableRegistry) find(id string) int {
	for i, t := range r.tables {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *TableRegistry) findByNumber(number int) int {
	for i, t := range r.tables {
		if t.Number == number {
			return i
		}
	}
	return -1
}

func (r *TableRegistry) snapshot() []models.Table {
	next := make([]models.Table, len(r.tables))
	copy(next, r.tables)
	return next
}

// commit writes next back to the store and adopts it once the write succeeded.
func (r *TableRegistry) commit(next []models.Table) error {
	if err := r.store.SaveTables(next); err != nil {
		utils.ErrorLogger.WithError(err).Error("failed to persist tables")
		return fmt.Errorf("persist tables: %w", err)
	}
	r.tables = next
	return nil
}

package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// OrderLedger owns every order and keeps item, department, order and table
// status consistent. Department and aggregate status are re-derived from the
// items inside every mutation; nothing is cached between calls.
//
// Mutations run one at a time. Each one persists the whole collection, then
// moves the table when the aggregate status changed, then notifies the print
// sink. A failed table move after the order was committed is logged, never
// rolled back, except on creation.
type OrderLedger struct {
	mu        sync.Mutex
	orders    []models.Order
	store     OrderStore
	tables    TableTransitioner
	sink      PrintSink
	broadcast Broadcaster
	now       func() time.Time
}

type LedgerOption func(*OrderLedger)

func WithPrintSink(sink PrintSink) LedgerOption {
	return func(l *OrderLedger) {
		if sink != nil {
			l.sink = sink
		}
	}
}

func WithOrderBroadcaster(b Broadcaster) LedgerOption {
	return func(l *OrderLedger) {
		if b != nil {
			l.broadcast = b
		}
	}
}

func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *OrderLedger) {
		l.now = now
	}
}

// NewOrderLedger loads every order from store.
func NewOrderLedger(store OrderStore, tables TableTransitioner, opts ...LedgerOption) (*OrderLedger, error) {
	orders, err := store.LoadOrders()
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	for i := range orders {
		sortItems(orders[i].Items)
	}

	l := &OrderLedger{
		orders:    orders,
		store:     store,
		tables:    tables,
		sink:      noopSink{},
		broadcast: noopBroadcaster{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CreateOrder opens an order on a table and marks the table occupied.
// Lines for the same menu item are merged.
func (l *OrderLedger) CreateOrder(tableID string, tableNumber int, lines []ItemInput) (string, error) {
	if tableID == "" {
		return "", ValidationError{Field: "table_id", Message: "is required"}
	}
	if len(lines) == 0 {
		return "", ValidationError{Field: "items", Message: "an order needs at least one item"}
	}
	for _, line := range lines {
		if err := validateItemInput(line); err != nil {
			return "", err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if active, ok := l.activeForTable(tableID); ok {
		return "", fmt.Errorf("table %d has order %s: %w", tableNumber, active.ID, ErrTableHasActiveOrder)
	}

	now := l.now()
	order := models.Order{
		ID:          uuid.NewString(),
		TableID:     tableID,
		TableNumber: tableNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, line := range lines {
		mergeLine(&order, line, now)
	}
	recompute(&order)

	prev := l.orders
	next := make([]models.Order, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, order)
	if err := l.commit(next); err != nil {
		return "", err
	}

	orderID := order.ID
	if err := l.tables.TransitionTable(tableID, models.TableStatusOccupied, &orderID); err != nil {
		if rbErr := l.commit(prev); rbErr != nil {
			utils.ErrorLogger.WithError(rbErr).WithField("order_id", order.ID).
				Error("failed to roll back order after table error")
		}
		return "", fmt.Errorf("occupy table %s: %w", tableID, err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"table":        tableNumber,
		"items":        len(order.Items),
		"total":        order.Total.StringFixed(2),
		"food_status":  order.FoodStatus,
		"drink_status": order.DrinkStatus,
	}).Info("order created")

	l.sink.OrderPlaced(order.Clone())
	l.broadcast.BroadcastOrder(order.Clone())
	return order.ID, nil
}

// AddItem adds a menu item to an open order. If a line for the same menu item
// exists its quantity grows and the line goes back to pending; otherwise a new
// pending line is appended. Either way the department reopens.
func (l *OrderLedger) AddItem(orderID string, menu models.MenuItem, quantity int, notes string) (models.OrderItem, error) {
	in := ItemInput{Menu: menu, Quantity: quantity, Notes: notes}
	if err := validateItemInput(in); err != nil {
		return models.OrderItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var line models.OrderItem
	before, after, err := l.update(orderID, func(o *models.Order) error {
		line = mergeLine(o, in, l.now())
		return nil
	})
	if err != nil {
		return models.OrderItem{}, err
	}

	l.afterAmend(before, after, "item added")
	return line, nil
}

// ItemChange carries the fields of a line to replace; nil fields are kept.
type ItemChange struct {
	Quantity *int
	Notes    *string
}

// UpdateItem applies quantity and notes to a line in a single commit, so the
// stations get one amendment. Quantity never drops below one; cutting a
// reopened line back to what was already served marks it served again.
func (l *OrderLedger) UpdateItem(orderID, itemID string, change ItemChange) error {
	if change.Quantity == nil && change.Notes == nil {
		return ValidationError{Field: "item", Message: "nothing to update"}
	}
	if change.Notes != nil {
		if err := validateStruct(ItemInput{Quantity: 1, Notes: *change.Notes}); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	before, after, err := l.update(orderID, func(o *models.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return fmt.Errorf("item %s: %w", itemID, ErrItemNotFound)
		}
		item := &o.Items[idx]
		if change.Quantity != nil {
			item.Quantity = max(*change.Quantity, 1)
			if item.ServedQuantity > 0 && item.Quantity <= item.ServedQuantity {
				item.Status = models.ItemStatusServed
				item.ServedQuantity = 0
			}
		}
		if change.Notes != nil {
			item.Notes = *change.Notes
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.afterAmend(before, after, "item updated")
	return nil
}

// UpdateItemQuantity sets a line's quantity, never below one.
func (l *OrderLedger) UpdateItemQuantity(orderID, itemID string, quantity int) error {
	return l.UpdateItem(orderID, itemID, ItemChange{Quantity: &quantity})
}

// UpdateItemNotes replaces the free-text note of a line.
func (l *OrderLedger) UpdateItemNotes(orderID, itemID, notes string) error {
	return l.UpdateItem(orderID, itemID, ItemChange{Notes: &notes})
}

// RemoveItem deletes a line. A department left without items is served.
func (l *OrderLedger) RemoveItem(orderID, itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	before, after, err := l.update(orderID, func(o *models.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return fmt.Errorf("item %s: %w", itemID, ErrItemNotFound)
		}
		o.Items = append(o.Items[:idx:idx], o.Items[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	l.afterAmend(before, after, "item removed")
	return nil
}

// UpdateItemStatus marks one line. Lines only move from pending to served;
// asking for the status a line already has is a no-op.
func (l *OrderLedger) UpdateItemStatus(orderID, itemID string, status models.ItemStatus) error {
	if !status.Valid() {
		return ValidationError{Field: "status", Message: fmt.Sprintf("unknown item status %q", status)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	before, after, err := l.update(orderID, func(o *models.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return fmt.Errorf("item %s: %w", itemID, ErrItemNotFound)
		}
		item := &o.Items[idx]
		if item.Status == models.ItemStatusServed && status == models.ItemStatusPending {
			return fmt.Errorf("item %s is served: %w", itemID, ErrInvalidTransition)
		}
		if status == models.ItemStatusServed {
			item.ServedQuantity = 0
		}
		item.Status = status
		return nil
	})
	if err != nil {
		return err
	}

	l.afterStatusChange(before, after, logrus.Fields{"item_id": itemID, "item_status": status})
	return nil
}

// UpdateDepartmentStatus sets every line of one department to pending or served.
func (l *OrderLedger) UpdateDepartmentStatus(orderID string, department models.ItemType, status models.OrderStatus) error {
	if !department.Valid() {
		return ValidationError{Field: "department", Message: fmt.Sprintf("unknown department %q", department)}
	}
	var itemStatus models.ItemStatus
	switch status {
	case models.OrderStatusServed:
		itemStatus = models.ItemStatusServed
	case models.OrderStatusPending:
		itemStatus = models.ItemStatusPending
	default:
		return ValidationError{Field: "status", Message: fmt.Sprintf("department status must be pending or served, got %q", status)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	before, after, err := l.update(orderID, func(o *models.Order) error {
		for i := range o.Items {
			if o.Items[i].Type == department {
				if itemStatus == models.ItemStatusServed {
					o.Items[i].ServedQuantity = 0
				}
				o.Items[i].Status = itemStatus
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.afterStatusChange(before, after, logrus.Fields{"department": department, "department_status": status})
	return nil
}

// UpdateOrderStatus accepts only paid: pending and served are derived from items.
func (l *OrderLedger) UpdateOrderStatus(orderID string, status models.OrderStatus, method models.PaymentMethod) error {
	if status != models.OrderStatusPaid {
		return fmt.Errorf("order status %q is derived from its items: %w", status, ErrInvalidTransition)
	}
	return l.FinalizePayment(orderID, method)
}

// FinalizePayment closes an order from any unpaid status, records the payment
// method, frees the table and prints the receipt. Paying a paid order again
// succeeds without doing anything.
func (l *OrderLedger) FinalizePayment(orderID string, method models.PaymentMethod) error {
	if !method.Valid() {
		return ValidationError{Field: "payment_method", Message: fmt.Sprintf("unknown payment method %q", method)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.find(orderID)
	if idx < 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	before := l.orders[idx]
	if before.IsPaid() {
		return nil
	}

	after := before.Clone()
	recompute(&after)
	after.Status = models.OrderStatusPaid
	after.PaymentMethod = &method
	after.UpdatedAt = l.now()

	next := l.snapshot()
	next[idx] = after
	if err := l.commit(next); err != nil {
		return err
	}

	l.moveTable(before, after)

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":       after.ID,
		"table":          after.TableNumber,
		"total":          after.Total.StringFixed(2),
		"payment_method": method,
	}).Info("order paid")

	l.sink.PaymentCompleted(after.Clone())
	l.broadcast.BroadcastOrder(after.Clone())
	return nil
}

// DeleteOrder removes an order. Deleting an unpaid order frees its table.
func (l *OrderLedger) DeleteOrder(orderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.find(orderID)
	if idx < 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	order := l.orders[idx]

	next := make([]models.Order, 0, len(l.orders)-1)
	next = append(next, l.orders[:idx]...)
	next = append(next, l.orders[idx+1:]...)
	if err := l.commit(next); err != nil {
		return err
	}

	if !order.IsPaid() {
		if err := l.tables.TransitionTable(order.TableID, models.TableStatusAvailable, nil); err != nil {
			utils.ErrorLogger.WithError(err).WithField("order_id", orderID).
				Error("order deleted but table could not be freed")
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{"order_id": orderID, "table": order.TableNumber}).Info("order deleted")
	l.broadcast.BroadcastOrderDeleted(orderID)
	return nil
}

// PrintOrder sends the kitchen and bar tickets of an order again.
func (l *OrderLedger) PrintOrder(orderID string) error {
	order, err := l.Order(orderID)
	if err != nil {
		return err
	}
	l.sink.OrderPlaced(order)
	return nil
}

func (l *OrderLedger) Order(orderID string) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.find(orderID)
	if idx < 0 {
		return models.Order{}, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	return l.orders[idx].Clone(), nil
}

// CanModifyOrder reports whether the order exists and is not paid.
func (l *OrderLedger) CanModifyOrder(orderID string) bool {
	order, err := l.Order(orderID)
	return err == nil && !order.IsPaid()
}

// Orders lists every order, oldest first.
func (l *OrderLedger) Orders() []models.Order {
	return l.filter(func(models.Order) bool { return true })
}

func (l *OrderLedger) OrdersByTable(tableID string) []models.Order {
	return l.filter(func(o models.Order) bool { return o.TableID == tableID })
}

// ActiveOrderForTable returns the unpaid order of a table, if any.
func (l *OrderLedger) ActiveOrderForTable(tableID string) (models.Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.activeForTable(tableID)
	if !ok {
		return models.Order{}, false
	}
	return order.Clone(), true
}

// OrdersByDepartment lists unpaid orders that still have unserved lines for
// the department. Kitchen and bar dashboards use it. When statuses are given
// only orders whose aggregate status is one of them are kept.
func (l *OrderLedger) OrdersByDepartment(department models.ItemType, statuses ...models.OrderStatus) []models.Order {
	return l.filter(func(o models.Order) bool {
		if o.IsPaid() || !o.HasType(department) || o.DepartmentStatus(department) == models.OrderStatusServed {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if o.Status == s {
				return true
			}
		}
		return false
	})
}

// OrdersByDateRange lists orders created within [from, to].
func (l *OrderLedger) OrdersByDateRange(from, to time.Time) []models.Order {
	return l.filter(func(o models.Order) bool {
		return !o.CreatedAt.Before(from) && !o.CreatedAt.After(to)
	})
}

// update applies fn to a copy of an unpaid order, re-derives its status and
// commits it. The caller holds l.mu.
func (l *OrderLedger) update(orderID string, fn func(o *models.Order) error) (models.Order, models.Order, error) {
	idx := l.find(orderID)
	if idx < 0 {
		return models.Order{}, models.Order{}, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	before := l.orders[idx]
	if before.IsPaid() {
		return models.Order{}, models.Order{}, fmt.Errorf("order %s: %w", orderID, ErrOrderPaid)
	}

	after := before.Clone()
	if err := fn(&after); err != nil {
		return models.Order{}, models.Order{}, err
	}
	recompute(&after)
	after.UpdatedAt = l.now()

	next := l.snapshot()
	next[idx] = after
	if err := l.commit(next); err != nil {
		return models.Order{}, models.Order{}, err
	}
	return before, after, nil
}

func (l *OrderLedger) afterAmend(before, after models.Order, what string) {
	l.moveTable(before, after)

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":     after.ID,
		"table":        after.TableNumber,
		"items":        len(after.Items),
		"total":        after.Total.StringFixed(2),
		"status":       after.Status,
		"food_status":  after.FoodStatus,
		"drink_status": after.DrinkStatus,
	}).Info(what)

	l.sink.OrderAmended(after.Clone())
	l.broadcast.BroadcastOrder(after.Clone())
}

func (l *OrderLedger) afterStatusChange(before, after models.Order, fields logrus.Fields) {
	l.moveTable(before, after)

	fields["order_id"] = after.ID
	fields["table"] = after.TableNumber
	fields["status"] = after.Status
	fields["food_status"] = after.FoodStatus
	fields["drink_status"] = after.DrinkStatus
	utils.InfoLogger.WithFields(fields).Info("order status updated")

	l.broadcast.BroadcastOrder(after.Clone())
}

// moveTable mirrors an aggregate status change onto the table: served sends it
// to readyToPay, reopening sends it back to occupied, paid frees it.
func (l *OrderLedger) moveTable(before, after models.Order) {
	if before.Status == after.Status {
		return
	}

	orderID := after.ID
	var err error
	switch after.Status {
	case models.OrderStatusServed:
		err = l.tables.TransitionTable(after.TableID, models.TableStatusReadyToPay, &orderID)
	case models.OrderStatusPending:
		err = l.tables.TransitionTable(after.TableID, models.TableStatusOccupied, &orderID)
	case models.OrderStatusPaid:
		err = l.tables.TransitionTable(after.TableID, models.TableStatusAvailable, nil)
	}
	if err != nil {
		utils.ErrorLogger.WithError(err).WithFields(logrus.Fields{
			"order_id": after.ID,
			"table_id": after.TableID,
			"status":   after.Status,
		}).Error("order committed but table transition failed")
	}
}

func (l *OrderLedger) filter(keep func(models.Order) bool) []models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Order, 0)
	for _, o := range l.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (l *OrderLedger) activeForTable(tableID string) (models.Order, bool) {
	for _, o := range l.orders {
		if o.TableID == tableID && !o.IsPaid() {
			return o, true
		}
	}
	return models.Order{}, false
}

func (l *OrderLedger) find(orderID string) int {
	for i, o := range l.orders {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}

func (l *OrderLedger) snapshot() []models.Order {
	next := make([]models.Order, len(l.orders))
	copy(next, l.orders)
	return next
}

// commit writes next back to the store and adopts it once the write succeeded.
func (l *OrderLedger) commit(next []models.Order) error {
	if err := l.store.SaveOrders(next); err != nil {
		utils.ErrorLogger.WithError(err).Error("failed to persist orders")
		return fmt.Errorf("persist orders: %w", err)
	}
	l.orders = next
	return nil
}

// mergeLine adds in to o, growing an existing line for the same menu item or
// appending a new one. The resulting line is pending; units of a served line
// are remembered in ServedQuantity so only the new ones are cooked.
func mergeLine(o *models.Order, in ItemInput, now time.Time) models.OrderItem {
	for i := range o.Items {
		item := &o.Items[i]
		if item.MenuItemID != in.Menu.ID {
			continue
		}
		if item.Status == models.ItemStatusServed {
			item.ServedQuantity = item.Quantity
		}
		item.Quantity += in.Quantity
		item.Status = models.ItemStatusPending
		if item.Notes == "" {
			item.Notes = in.Notes
		}
		return *item
	}

	position := 0
	for _, item := range o.Items {
		if item.Position >= position {
			position = item.Position + 1
		}
	}
	item := models.OrderItem{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		MenuItemID: in.Menu.ID,
		Name:       in.Menu.Name,
		Price:      in.Menu.Price,
		Type:       in.Menu.Type,
		Quantity:   in.Quantity,
		Status:     models.ItemStatusPending,
		Notes:      in.Notes,
		Position:   position,
		CreatedAt:  now,
	}
	o.Items = append(o.Items, item)
	return item
}

func findItem(o *models.Order, itemID string) int {
	for i, item := range o.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func sortItems(items []models.OrderItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
}

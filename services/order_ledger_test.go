package services

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-floor/models"
)

func TestOrderLedger_Scenarios(t *testing.T) {
	f := newFloor(t)

	// A: open an order with two plates on table 5
	table, err := f.registry.AddTable(5, 4)
	require.NoError(t, err)

	orderID, err := f.ledger.CreateOrder(table.ID, 5, []ItemInput{{Menu: food("bruschetta", "6"), Quantity: 2}})
	require.NoError(t, err)

	order := f.order(t, orderID)
	assert.Equal(t, models.OrderStatusPending, order.FoodStatus)
	assert.Equal(t, models.OrderStatusServed, order.DrinkStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(dec("12")), "total %s", order.Total)

	tbl := f.table(t, table.ID)
	assert.Equal(t, models.TableStatusOccupied, tbl.Status)
	require.NotNil(t, tbl.OrderID)
	assert.Equal(t, orderID, *tbl.OrderID)

	// B: the kitchen serves the plate
	require.NoError(t, f.ledger.UpdateItemStatus(orderID, order.Items[0].ID, models.ItemStatusServed))

	order = f.order(t, orderID)
	assert.Equal(t, models.OrderStatusServed, order.FoodStatus)
	assert.Equal(t, models.OrderStatusServed, order.Status)
	tbl = f.table(t, table.ID)
	assert.Equal(t, models.TableStatusReadyToPay, tbl.Status)
	require.NotNil(t, tbl.OrderID)
	assert.Equal(t, orderID, *tbl.OrderID)

	// C: a drink reopens the order and the table goes back to occupied
	_, err = f.ledger.AddItem(orderID, drink("chianti", "7"), 1, "")
	require.NoError(t, err)

	order = f.order(t, orderID)
	assert.Equal(t, models.OrderStatusPending, order.DrinkStatus)
	assert.Equal(t, models.OrderStatusServed, order.FoodStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(dec("19")))
	tbl = f.table(t, table.ID)
	assert.Equal(t, models.TableStatusOccupied, tbl.Status)
	require.NotNil(t, tbl.OrderID)
	assert.Equal(t, orderID, *tbl.OrderID)

	// D: payment by card frees the table and freezes the order
	require.NoError(t, f.ledger.FinalizePayment(orderID, models.PaymentMethodCard))

	order = f.order(t, orderID)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, models.PaymentMethodCard, *order.PaymentMethod)
	tbl = f.table(t, table.ID)
	assert.Equal(t, models.TableStatusAvailable, tbl.Status)
	assert.Nil(t, tbl.OrderID)

	_, err = f.ledger.AddItem(orderID, food("tiramisu", "6"), 1, "")
	assert.ErrorIs(t, err, ErrOrderPaid)

	// E: a second table 5 is refused
	_, err = f.registry.AddTable(5, 2)
	assert.ErrorIs(t, err, ErrDuplicateTableNumber)
	assert.Len(t, f.registry.Tables(), 1)

	assert.Equal(t, []models.TableStatus{
		models.TableStatusOccupied,
		models.TableStatusReadyToPay,
		models.TableStatusOccupied,
		models.TableStatusAvailable,
	}, statusesOf(f.tables.calls))
}

func statusesOf(calls []transition) []models.TableStatus {
	out := make([]models.TableStatus, len(calls))
	for i, c := range calls {
		out[i] = c.Status
	}
	return out
}

func TestOrderLedger_CreateOrder(t *testing.T) {
	t.Run("merges repeated menu items", func(t *testing.T) {
		f := newFloor(t)
		table, err := f.registry.AddTable(1, 2)
		require.NoError(t, err)

		id, err := f.ledger.CreateOrder(table.ID, 1, []ItemInput{
			{Menu: food("carbonara", "12"), Quantity: 1},
			{Menu: drink("acqua", "3"), Quantity: 1},
			{Menu: food("carbonara", "12"), Quantity: 2, Notes: "senza pepe"},
		})
		require.NoError(t, err)

		order := f.order(t, id)
		require.Len(t, order.Items, 2)
		assert.Equal(t, "carbonara", order.Items[0].MenuItemID)
		assert.Equal(t, 3, order.Items[0].Quantity)
		assert.Equal(t, "senza pepe", order.Items[0].Notes)
		assert.Equal(t, "acqua", order.Items[1].MenuItemID)
		assert.True(t, order.Total.Equal(dec("39")))
		assert.Equal(t, []string{"placed"}, f.sink.kinds())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		f := newFloor(t)
		table, err := f.registry.AddTable(1, 2)
		require.NoError(t, err)

		_, err = f.ledger.CreateOrder(table.ID, 1, nil)
		assert.True(t, IsValidation(err))

		_, err = f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("x", "1"), Quantity: 0}})
		assert.True(t, IsValidation(err))

		unavailable := food("x", "1")
		unavailable.Available = false
		_, err = f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: unavailable, Quantity: 1}})
		assert.ErrorIs(t, err, ErrMenuItemUnavailable)

		assert.Empty(t, f.ledger.Orders())
		assert.Empty(t, f.tables.calls)
		assert.Equal(t, models.TableStatusAvailable, f.table(t, table.ID).Status)
	})

	t.Run("refuses a second active order on the same table", func(t *testing.T) {
		f := newFloor(t)
		table, err := f.registry.AddTable(1, 2)
		require.NoError(t, err)

		first, err := f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("a", "1"), Quantity: 1}})
		require.NoError(t, err)

		_, err = f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("b", "1"), Quantity: 1}})
		assert.ErrorIs(t, err, ErrTableHasActiveOrder)
		assert.Len(t, f.ledger.Orders(), 1)

		require.NoError(t, f.ledger.FinalizePayment(first, models.PaymentMethodCash))
		_, err = f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("b", "1"), Quantity: 1}})
		assert.NoError(t, err)
		assert.Len(t, f.ledger.OrdersByTable(table.ID), 2)
	})

	t.Run("rolls back when the table cannot be occupied", func(t *testing.T) {
		f := newFloor(t)

		_, err := f.ledger.CreateOrder("missing", 9, []ItemInput{{Menu: food("a", "1"), Quantity: 1}})
		assert.ErrorIs(t, err, ErrTableNotFound)
		assert.Empty(t, f.ledger.Orders())
		assert.Empty(t, f.store.orders)
		assert.Empty(t, f.sink.events)
	})

	t.Run("fails without side effects when persistence fails", func(t *testing.T) {
		f := newFloor(t)
		table, err := f.registry.AddTable(1, 2)
		require.NoError(t, err)
		f.store.failOrders = true

		_, err = f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("a", "1"), Quantity: 1}})
		assert.ErrorIs(t, err, errStoreDown)
		assert.Empty(t, f.ledger.Orders())
		assert.Empty(t, f.tables.calls)
		assert.Empty(t, f.sink.events)
	})
}

func TestOrderLedger_AddItem(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(2, 4)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 2, []ItemInput{{Menu: drink("prosecco", "6"), Quantity: 2}})
	require.NoError(t, err)

	require.NoError(t, f.ledger.UpdateDepartmentStatus(id, models.ItemTypeDrink, models.OrderStatusServed))
	assert.Equal(t, models.TableStatusReadyToPay, f.table(t, table.ID).Status)

	// another round of the same drink merges into the served line and reopens it
	line, err := f.ledger.AddItem(id, drink("prosecco", "6"), 2, "")
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, models.ItemStatusPending, line.Status)

	order := f.order(t, id)
	require.Len(t, order.Items, 1)
	assert.Equal(t, models.OrderStatusPending, order.DrinkStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(dec("24")))
	assert.Equal(t, models.TableStatusOccupied, f.table(t, table.ID).Status)

	// a new menu item is appended after the existing lines
	line, err = f.ledger.AddItem(id, food("tagliata", "22"), 1, "al sangue")
	require.NoError(t, err)
	order = f.order(t, id)
	require.Len(t, order.Items, 2)
	assert.Equal(t, line.ID, order.Items[1].ID)
	assert.Equal(t, "al sangue", order.Items[1].Notes)
	assert.Equal(t, models.OrderStatusPending, order.FoodStatus)

	_, err = f.ledger.AddItem("missing", food("a", "1"), 1, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.ledger.AddItem(id, food("a", "1"), 0, "")
	assert.True(t, IsValidation(err))

	// the catalog price is copied; later price changes leave the line alone
	order = f.order(t, id)
	assert.True(t, order.Items[1].Price.Equal(dec("22")))
}

func TestOrderLedger_UpdateItemQuantityAndNotes(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(3, 4)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 3, []ItemInput{{Menu: food("risotto", "14.50"), Quantity: 2}})
	require.NoError(t, err)
	itemID := f.order(t, id).Items[0].ID

	require.NoError(t, f.ledger.UpdateItemQuantity(id, itemID, 3))
	assert.True(t, f.order(t, id).Total.Equal(dec("43.5")))

	require.NoError(t, f.ledger.UpdateItemQuantity(id, itemID, 0))
	order := f.order(t, id)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.True(t, order.Total.Equal(dec("14.5")))
	assert.Equal(t, models.OrderStatusPending, order.Status)

	require.NoError(t, f.ledger.UpdateItemNotes(id, itemID, "senza formaggio"))
	assert.Equal(t, "senza formaggio", f.order(t, id).Items[0].Notes)

	assert.ErrorIs(t, f.ledger.UpdateItemQuantity(id, "missing", 2), ErrItemNotFound)
	assert.ErrorIs(t, f.ledger.UpdateItemNotes(id, "missing", "x"), ErrItemNotFound)

	assert.Equal(t, []string{"placed", "amended", "amended", "amended"}, f.sink.kinds())
}

func TestOrderLedger_UpdateItemIsOneCommit(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(4, 2)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 4, []ItemInput{{Menu: food("lasagna", "13"), Quantity: 1}})
	require.NoError(t, err)
	itemID := f.order(t, id).Items[0].ID
	saves := f.store.orderSaves

	quantity, notes := 2, "ben cotta"
	require.NoError(t, f.ledger.UpdateItem(id, itemID, ItemChange{Quantity: &quantity, Notes: &notes}))

	order := f.order(t, id)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "ben cotta", order.Items[0].Notes)
	assert.True(t, order.Total.Equal(dec("26")))
	assert.Equal(t, saves+1, f.store.orderSaves)
	assert.Equal(t, []string{"placed", "amended"}, f.sink.kinds())

	err = f.ledger.UpdateItem(id, itemID, ItemChange{})
	assert.True(t, IsValidation(err))
	assert.Equal(t, saves+1, f.store.orderSaves)
}

func TestOrderLedger_ReorderedLineRemembersServedUnits(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(6, 4)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 6, []ItemInput{{Menu: food("arancini", "4"), Quantity: 2}})
	require.NoError(t, err)
	itemID := f.order(t, id).Items[0].ID
	require.NoError(t, f.ledger.UpdateItemStatus(id, itemID, models.ItemStatusServed))

	line, err := f.ledger.AddItem(id, food("arancini", "4"), 1, "")
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 2, line.ServedQuantity)
	assert.Equal(t, 1, line.ToPrepare())

	amended := f.sink.events[len(f.sink.events)-1]
	require.Equal(t, "amended", amended.Kind)
	assert.Equal(t, 1, amended.Order.Items[0].ToPrepare())

	// one more on a line that is still pending keeps the served count
	line, err = f.ledger.AddItem(id, food("arancini", "4"), 1, "")
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, 2, line.ServedQuantity)

	// cancelling the extra units leaves only what was served
	require.NoError(t, f.ledger.UpdateItemQuantity(id, itemID, 2))
	order := f.order(t, id)
	assert.Equal(t, models.ItemStatusServed, order.Items[0].Status)
	assert.Zero(t, order.Items[0].ServedQuantity)
	assert.Equal(t, models.OrderStatusServed, order.Status)
	assert.Equal(t, models.TableStatusReadyToPay, f.table(t, table.ID).Status)

	// serving a reopened line clears the count
	_, err = f.ledger.AddItem(id, food("arancini", "4"), 1, "")
	require.NoError(t, err)
	require.NoError(t, f.ledger.UpdateDepartmentStatus(id, models.ItemTypeFood, models.OrderStatusServed))
	order = f.order(t, id)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Zero(t, order.Items[0].ServedQuantity)
	assert.Zero(t, order.Items[0].ToPrepare())
}

func TestOrderLedger_RemoveItem(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(4, 4)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 4, []ItemInput{
		{Menu: food("carbonara", "12"), Quantity: 1},
		{Menu: drink("coca", "3.50"), Quantity: 2},
	})
	require.NoError(t, err)
	order := f.order(t, id)
	foodLine, drinkLine := order.Items[0].ID, order.Items[1].ID

	require.NoError(t, f.ledger.UpdateItemStatus(id, foodLine, models.ItemStatusServed))
	assert.Equal(t, models.OrderStatusPending, f.order(t, id).Status)

	// removing the only pending department closes the order
	require.NoError(t, f.ledger.RemoveItem(id, drinkLine))
	order = f.order(t, id)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, models.OrderStatusServed, order.DrinkStatus)
	assert.Equal(t, models.OrderStatusServed, order.Status)
	assert.True(t, order.Total.Equal(dec("12")))
	assert.Equal(t, models.TableStatusReadyToPay, f.table(t, table.ID).Status)

	// an empty order is vacuously served
	require.NoError(t, f.ledger.RemoveItem(id, foodLine))
	order = f.order(t, id)
	assert.Empty(t, order.Items)
	assert.True(t, order.Total.IsZero())
	assert.Equal(t, models.OrderStatusServed, order.Status)
	assert.Equal(t, models.TableStatusReadyToPay, f.table(t, table.ID).Status)

	assert.ErrorIs(t, f.ledger.RemoveItem(id, foodLine), ErrItemNotFound)
}

func TestOrderLedger_ItemStatus(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(6, 6)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 6, []ItemInput{
		{Menu: food("tagliere", "14"), Quantity: 1},
		{Menu: food("branzino", "19.50"), Quantity: 1},
		{Menu: drink("chianti", "7"), Quantity: 2},
	})
	require.NoError(t, err)
	items := f.order(t, id).Items

	require.NoError(t, f.ledger.UpdateItemStatus(id, items[0].ID, models.ItemStatusServed))
	order := f.order(t, id)
	assert.Equal(t, models.OrderStatusPending, order.FoodStatus, "one plate is still in the kitchen")

	require.NoError(t, f.ledger.UpdateItemStatus(id, items[1].ID, models.ItemStatusServed))
	require.NoError(t, f.ledger.UpdateItemStatus(id, items[1].ID, models.ItemStatusServed), "repeating is a no-op")
	order = f.order(t, id)
	assert.Equal(t, models.OrderStatusServed, order.FoodStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.TableStatusOccupied, f.table(t, table.ID).Status)

	err = f.ledger.UpdateItemStatus(id, items[0].ID, models.ItemStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, IsValidation(f.ledger.UpdateItemStatus(id, items[0].ID, "cooking")))
	assert.ErrorIs(t, f.ledger.UpdateItemStatus(id, "missing", models.ItemStatusServed), ErrItemNotFound)

	require.NoError(t, f.ledger.UpdateItemStatus(id, items[2].ID, models.ItemStatusServed))
	assert.Equal(t, models.OrderStatusServed, f.order(t, id).Status)
	assert.Equal(t, models.TableStatusReadyToPay, f.table(t, table.ID).Status)

	// status changes are not printed
	assert.Equal(t, []string{"placed"}, f.sink.kinds())
}

func TestOrderLedger_DepartmentStatus(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(7, 6)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 7, []ItemInput{
		{Menu: food("carbonara", "12"), Quantity: 2},
		{Menu: food("tiramisu", "6"), Quantity: 2},
		{Menu: drink("espresso", "1.50"), Quantity: 2},
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.UpdateDepartmentStatus(id, models.ItemTypeFood, models.OrderStatusServed))
	order := f.order(t, id)
	for _, item := range order.ItemsOf(models.ItemTypeFood) {
		assert.Equal(t, models.ItemStatusServed, item.Status)
	}
	assert.Equal(t, models.ItemStatusPending, order.ItemsOf(models.ItemTypeDrink)[0].Status)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	require.NoError(t, f.ledger.UpdateDepartmentStatus(id, models.ItemTypeDrink, models.OrderStatusServed))
	assert.Equal(t, models.OrderStatusServed, f.order(t, id).Status)
	assert.Equal(t, models.TableStatusReadyToPay, f.table(t, table.ID).Status)

	// the bulk entry point may reopen a department
	require.NoError(t, f.ledger.UpdateDepartmentStatus(id, models.ItemTypeDrink, models.OrderStatusPending))
	order = f.order(t, id)
	assert.Equal(t, models.OrderStatusPending, order.DrinkStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.TableStatusOccupied, f.table(t, table.ID).Status)

	assert.True(t, IsValidation(f.ledger.UpdateDepartmentStatus(id, "dessert", models.OrderStatusServed)))
	assert.True(t, IsValidation(f.ledger.UpdateDepartmentStatus(id, models.ItemTypeFood, models.OrderStatusPaid)))
	assert.ErrorIs(t, f.ledger.UpdateDepartmentStatus("missing", models.ItemTypeFood, models.OrderStatusServed), ErrOrderNotFound)
}

func TestOrderLedger_FinalizePayment(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(8, 8)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 8, []ItemInput{
		{Menu: food("tagliata", "22"), Quantity: 1},
		{Menu: drink("acqua", "3"), Quantity: 1},
	})
	require.NoError(t, err)

	assert.True(t, IsValidation(f.ledger.FinalizePayment(id, "cheque")))
	assert.ErrorIs(t, f.ledger.UpdateOrderStatus(id, models.OrderStatusServed, models.PaymentMethodCash), ErrInvalidTransition)

	// payment does not require the order to be served first
	require.NoError(t, f.ledger.UpdateOrderStatus(id, models.OrderStatusPaid, models.PaymentMethodCash))
	order := f.order(t, id)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, models.PaymentMethodCash, *order.PaymentMethod)
	assert.Equal(t, models.TableStatusAvailable, f.table(t, table.ID).Status)
	assert.False(t, f.ledger.CanModifyOrder(id))

	// paying again is a no-op that still succeeds
	calls := len(f.tables.calls)
	require.NoError(t, f.ledger.FinalizePayment(id, models.PaymentMethodCard))
	assert.Equal(t, models.PaymentMethodCash, *f.order(t, id).PaymentMethod)
	assert.Len(t, f.tables.calls, calls)
	assert.Equal(t, []string{"placed", "paid"}, f.sink.kinds())

	itemID := order.Items[0].ID
	assert.ErrorIs(t, f.ledger.UpdateItemQuantity(id, itemID, 2), ErrOrderPaid)
	assert.ErrorIs(t, f.ledger.UpdateItemNotes(id, itemID, "x"), ErrOrderPaid)
	assert.ErrorIs(t, f.ledger.RemoveItem(id, itemID), ErrOrderPaid)
	assert.ErrorIs(t, f.ledger.UpdateItemStatus(id, itemID, models.ItemStatusServed), ErrOrderPaid)
	assert.ErrorIs(t, f.ledger.UpdateDepartmentStatus(id, models.ItemTypeFood, models.OrderStatusServed), ErrOrderPaid)
	assert.Equal(t, order, f.order(t, id))

	assert.ErrorIs(t, f.ledger.FinalizePayment("missing", models.PaymentMethodCash), ErrOrderNotFound)
}

func TestOrderLedger_TableTransitionFailureAfterCommit(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(1, 2)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("a", "5"), Quantity: 1}})
	require.NoError(t, err)

	f.tables.err = errors.New("registry unavailable")
	require.NoError(t, f.ledger.FinalizePayment(id, models.PaymentMethodCard))

	assert.Equal(t, models.OrderStatusPaid, f.order(t, id).Status)
	assert.Equal(t, []string{"placed", "paid"}, f.sink.kinds())
}

func TestOrderLedger_PersistFailureLeavesOrderUntouched(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(1, 2)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("a", "5"), Quantity: 1}})
	require.NoError(t, err)
	before := f.order(t, id)
	calls := len(f.tables.calls)

	f.store.failOrders = true
	_, err = f.ledger.AddItem(id, drink("b", "2"), 1, "")
	assert.ErrorIs(t, err, errStoreDown)
	assert.ErrorIs(t, f.ledger.UpdateItemStatus(id, before.Items[0].ID, models.ItemStatusServed), errStoreDown)
	assert.ErrorIs(t, f.ledger.FinalizePayment(id, models.PaymentMethodCash), errStoreDown)
	assert.ErrorIs(t, f.ledger.DeleteOrder(id), errStoreDown)

	assert.Equal(t, before, f.order(t, id))
	assert.Len(t, f.tables.calls, calls)
	assert.Equal(t, []string{"placed"}, f.sink.kinds())
}

func TestOrderLedger_DeleteOrder(t *testing.T) {
	f := newFloor(t)
	t1, err := f.registry.AddTable(1, 2)
	require.NoError(t, err)
	t2, err := f.registry.AddTable(2, 2)
	require.NoError(t, err)

	active, err := f.ledger.CreateOrder(t1.ID, 1, []ItemInput{{Menu: food("a", "5"), Quantity: 1}})
	require.NoError(t, err)
	paid, err := f.ledger.CreateOrder(t2.ID, 2, []ItemInput{{Menu: food("a", "5"), Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, f.ledger.FinalizePayment(paid, models.PaymentMethodCash))
	_, err = f.ledger.CreateOrder(t2.ID, 2, []ItemInput{{Menu: food("b", "5"), Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteOrder(active))
	assert.Equal(t, models.TableStatusAvailable, f.table(t, t1.ID).Status)
	_, err = f.ledger.Order(active)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// deleting a closed order leaves the table's new order alone
	require.NoError(t, f.ledger.DeleteOrder(paid))
	assert.Equal(t, models.TableStatusOccupied, f.table(t, t2.ID).Status)

	assert.Equal(t, []string{active, paid}, f.broadcast.deleted)
	assert.ErrorIs(t, f.ledger.DeleteOrder(active), ErrOrderNotFound)
}

func TestOrderLedger_Queries(t *testing.T) {
	f := newFloor(t)
	var tables []models.Table
	for n := 1; n <= 3; n++ {
		table, err := f.registry.AddTable(n, 4)
		require.NoError(t, err)
		tables = append(tables, table)
	}

	foodOnly, err := f.ledger.CreateOrder(tables[0].ID, 1, []ItemInput{{Menu: food("a", "5"), Quantity: 1}})
	require.NoError(t, err)
	mixed, err := f.ledger.CreateOrder(tables[1].ID, 2, []ItemInput{
		{Menu: food("a", "5"), Quantity: 1},
		{Menu: drink("b", "2"), Quantity: 1},
	})
	require.NoError(t, err)
	paid, err := f.ledger.CreateOrder(tables[2].ID, 3, []ItemInput{{Menu: drink("b", "2"), Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, f.ledger.FinalizePayment(paid, models.PaymentMethodCard))

	idsOf := func(orders []models.Order) []string {
		ids := make([]string, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		return ids
	}

	assert.Equal(t, []string{foodOnly, mixed}, idsOf(f.ledger.OrdersByDepartment(models.ItemTypeFood)))
	assert.Equal(t, []string{mixed}, idsOf(f.ledger.OrdersByDepartment(models.ItemTypeDrink)))

	assert.Equal(t, []string{mixed}, idsOf(f.ledger.OrdersByDepartment(models.ItemTypeDrink, models.OrderStatusPending)))
	assert.Empty(t, f.ledger.OrdersByDepartment(models.ItemTypeFood, models.OrderStatusServed))

	require.NoError(t, f.ledger.UpdateDepartmentStatus(mixed, models.ItemTypeFood, models.OrderStatusServed))
	assert.Equal(t, []string{foodOnly}, idsOf(f.ledger.OrdersByDepartment(models.ItemTypeFood)))

	active, ok := f.ledger.ActiveOrderForTable(tables[1].ID)
	require.True(t, ok)
	assert.Equal(t, mixed, active.ID)
	_, ok = f.ledger.ActiveOrderForTable(tables[2].ID)
	assert.False(t, ok)

	all := f.ledger.Orders()
	require.Len(t, all, 3)
	from, to := all[0].CreatedAt, all[1].CreatedAt
	assert.Equal(t, []string{foodOnly, mixed}, idsOf(f.ledger.OrdersByDateRange(from, to)))
	assert.Empty(t, f.ledger.OrdersByDateRange(to.Add(-1), from))

	assert.True(t, f.ledger.CanModifyOrder(mixed))
	assert.False(t, f.ledger.CanModifyOrder("missing"))

	// returned orders are copies
	all[0].Items[0].Quantity = 100
	assert.Equal(t, 1, f.order(t, foodOnly).Items[0].Quantity)
}

func TestOrderLedger_PrintOrder(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(1, 2)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: food("a", "5"), Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, f.ledger.PrintOrder(id))
	assert.Equal(t, []string{"placed", "placed"}, f.sink.kinds())
	assert.ErrorIs(t, f.ledger.PrintOrder("missing"), ErrOrderNotFound)
}

func TestOrderLedger_ReloadsFromStore(t *testing.T) {
	f := newFloor(t)
	table, err := f.registry.AddTable(1, 2)
	require.NoError(t, err)
	id, err := f.ledger.CreateOrder(table.ID, 1, []ItemInput{
		{Menu: food("a", "5"), Quantity: 1},
		{Menu: drink("b", "2"), Quantity: 3},
	})
	require.NoError(t, err)

	reloaded, err := NewOrderLedger(f.store, f.tables)
	require.NoError(t, err)
	order, err := reloaded.Order(id)
	require.NoError(t, err)
	assert.Equal(t, f.order(t, id), order)
}

// Random mutation sequences must keep every derived field consistent.
func TestOrderLedger_DerivationsHoldUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	menu := []models.MenuItem{
		food("carbonara", "12"), food("tiramisu", "6.50"),
		drink("chianti", "7"), drink("espresso", "1.20"),
	}

	for run := 0; run < 20; run++ {
		f := newFloor(t)
		table, err := f.registry.AddTable(1, 4)
		require.NoError(t, err)
		id, err := f.ledger.CreateOrder(table.ID, 1, []ItemInput{{Menu: menu[rng.Intn(len(menu))], Quantity: 1 + rng.Intn(3)}})
		require.NoError(t, err)

		for step := 0; step < 40; step++ {
			order := f.order(t, id)
			switch op := rng.Intn(6); {
			case op == 0:
				_, err = f.ledger.AddItem(id, menu[rng.Intn(len(menu))], 1+rng.Intn(2), "")
			case op == 1 && len(order.Items) > 0:
				err = f.ledger.UpdateItemQuantity(id, order.Items[rng.Intn(len(order.Items))].ID, rng.Intn(4))
			case op == 2 && len(order.Items) > 0:
				err = f.ledger.RemoveItem(id, order.Items[rng.Intn(len(order.Items))].ID)
			case op == 3 && len(order.Items) > 0:
				err = f.ledger.UpdateItemStatus(id, order.Items[rng.Intn(len(order.Items))].ID, models.ItemStatusServed)
			case op == 4:
				status := models.OrderStatusServed
				if rng.Intn(3) == 0 {
					status = models.OrderStatusPending
				}
				err = f.ledger.UpdateDepartmentStatus(id, models.Departments[rng.Intn(2)], status)
			default:
				err = nil
			}
			require.NoError(t, err)
			assertConsistent(t, f, id, table.ID)
		}

		require.NoError(t, f.ledger.FinalizePayment(id, models.PaymentMethodCash))
		assert.Equal(t, models.TableStatusAvailable, f.table(t, table.ID).Status)
	}
}

func assertConsistent(t *testing.T, f *floor, orderID, tableID string) {
	t.Helper()
	order := f.order(t, orderID)

	assert.True(t, order.Total.Equal(OrderTotal(order.Items)))
	for _, dept := range models.Departments {
		served := true
		for _, item := range order.ItemsOf(dept) {
			served = served && item.Status == models.ItemStatusServed
		}
		want := models.OrderStatusPending
		if served {
			want = models.OrderStatusServed
		}
		assert.Equal(t, want, order.DepartmentStatus(dept), "department %s", dept)
	}
	assert.Equal(t, AggregateStatus(order.FoodStatus, order.DrinkStatus), order.Status)

	table := f.table(t, tableID)
	if order.Status == models.OrderStatusServed {
		assert.Equal(t, models.TableStatusReadyToPay, table.Status)
	} else {
		assert.Equal(t, models.TableStatusOccupied, table.Status)
	}
	require.NotNil(t, table.OrderID)
	assert.Equal(t, orderID, *table.OrderID)
}

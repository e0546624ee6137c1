package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type OrderController struct {
	Orders  *services.OrderLedger
	Tables  *services.TableRegistry
	Catalog *services.Catalog
}

func NewOrderController(orders *services.OrderLedger, tables *services.TableRegistry, catalog *services.Catalog) *OrderController {
	return &OrderController{Orders: orders, Tables: tables, Catalog: catalog}
}

type itemRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gte=1"`
	Notes      string `json:"notes" binding:"max=500"`
}

type createOrderRequest struct {
	TableID string        `json:"table_id" binding:"required"`
	Items   []itemRequest `json:"items" binding:"required,min=1,dive"`
}

type updateItemRequest struct {
	Quantity *int    `json:"quantity" binding:"omitempty,gte=1"`
	Notes    *string `json:"notes" binding:"omitempty,max=500"`
}

// CreateOrder -> opens an order on an available table; the table becomes occupied.
// A reserved table must have its reservation cancelled first.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := oc.Tables.Table(req.TableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// occupied and readyToPay fall through: the ledger refuses them while an
	// unpaid order exists and reseats a table left behind without one
	if table.Status == models.TableStatusReserved {
		respondServiceError(c, fmt.Errorf("table %d is reserved: %w", table.Number, services.ErrTableNotAvailable))
		return
	}

	lines := make([]services.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		menu, err := oc.Catalog.MenuItem(it.MenuItemID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		lines = append(lines, services.ItemInput{Menu: menu, Quantity: it.Quantity, Notes: it.Notes})
	}

	orderID, err := oc.Orders.CreateOrder(table.ID, table.Number, lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.Order(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", order)
}

// GetOrders -> all orders, filtered by ?table_id=, ?status= or ?from=&to=
func (oc *OrderController) GetOrders(c *gin.Context) {
	var orders []models.Order
	switch {
	case c.Query("table_id") != "":
		orders = oc.Orders.OrdersByTable(c.Query("table_id"))
	case c.Query("from") != "" || c.Query("to") != "":
		from, to, err := parseRange(c.Query("from"), c.Query("to"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		orders = oc.Orders.OrdersByDateRange(from, to)
	default:
		orders = oc.Orders.Orders()
	}

	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown order status %q", status))
			return
		}
		kept := orders[:0]
		for _, o := range orders {
			if o.Status == s {
				kept = append(kept, o)
			}
		}
		orders = kept
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.Order(c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetTableOrder -> the active order of a table
func (oc *OrderController) GetTableOrder(c *gin.Context) {
	table, err := oc.Tables.Table(c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	order, ok := oc.Orders.ActiveOrderForTable(table.ID)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table %d: %w", table.Number, services.ErrOrderNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active order", order)
}

// AddItem -> adds a menu item; an existing line for the same item grows instead
func (oc *OrderController) AddItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, err := oc.Catalog.MenuItem(req.MenuItemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	item, err := oc.Orders.AddItem(c.Param("order_id"), menu, req.Quantity, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Item added to order", item)
}

// UpdateItem -> changes quantity and/or notes of a line
func (oc *OrderController) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity == nil && req.Notes == nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("nothing to update"))
		return
	}

	orderID := c.Param("order_id")
	change := services.ItemChange{Quantity: req.Quantity, Notes: req.Notes}
	if err := oc.Orders.UpdateItem(orderID, c.Param("item_id"), change); err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.Order(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item updated", order)
}

func (oc *OrderController) RemoveItem(c *gin.Context) {
	orderID := c.Param("order_id")
	if err := oc.Orders.RemoveItem(orderID, c.Param("item_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	order, err := oc.Orders.Order(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", order)
}

// DeleteOrder -> removes the order and frees its table when unpaid
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	if err := oc.Orders.DeleteOrder(c.Param("order_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", nil)
}

// PrintOrder -> sends the department tickets again
func (oc *OrderController) PrintOrder(c *gin.Context) {
	if err := oc.Orders.PrintOrder(c.Param("order_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusAccepted, "Order sent to printers", nil)
}

// parseRange accepts RFC3339 timestamps or plain dates. A plain "to" date
// covers the whole day.
func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Now()
	if fromRaw != "" {
		t, _, err := parseTime(fromRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from: %w", err)
		}
		from = t
	}
	if toRaw != "" {
		t, dateOnly, err := parseTime(toRaw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = t
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	return t, true, err
}

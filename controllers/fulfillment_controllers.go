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

// FulfillmentController serves the kitchen and bar screens. Each instance
// works on a single department.
type FulfillmentController struct {
	Orders     *services.OrderLedger
	Department models.ItemType
}

func NewFulfillmentController(orders *services.OrderLedger, department models.ItemType) *FulfillmentController {
	return &FulfillmentController{Orders: orders, Department: department}
}

type departmentOrder struct {
	ID          string             `json:"id"`
	TableNumber int                `json:"table_number"`
	Status      models.OrderStatus `json:"status"`
	Items       []models.OrderItem `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// GetQueue -> unpaid orders still waiting on this department, oldest first.
// ?status= narrows the queue to one aggregate order status.
func (fc *FulfillmentController) GetQueue(c *gin.Context) {
	var statuses []models.OrderStatus
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown order status %q", status))
			return
		}
		statuses = append(statuses, s)
	}

	orders := fc.Orders.OrdersByDepartment(fc.Department, statuses...)
	queue := make([]departmentOrder, 0, len(orders))
	for _, o := range orders {
		queue = append(queue, departmentOrder{
			ID:          o.ID,
			TableNumber: o.TableNumber,
			Status:      o.DepartmentStatus(fc.Department),
			Items:       o.ItemsOf(fc.Department),
			CreatedAt:   o.CreatedAt,
			UpdatedAt:   o.UpdatedAt,
		})
	}
	utils.RespondJSON(c, http.StatusOK, "Department queue", gin.H{
		"department": fc.Department,
		"orders":     queue,
	})
}

// UpdateItemStatus -> marks one line served (or back to pending)
func (fc *FulfillmentController) UpdateItemStatus(c *gin.Context) {
	var req struct {
		Status models.ItemStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orderID := c.Param("order_id")
	order, err := fc.Orders.Order(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !fc.owns(order, c.Param("item_id")) {
		utils.RespondError(c, http.StatusNotFound, services.ErrItemNotFound)
		return
	}

	if err := fc.Orders.UpdateItemStatus(orderID, c.Param("item_id"), req.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	fc.respondOrder(c, orderID, "Item status updated")
}

// UpdateStatus -> marks every line of this department at once
func (fc *FulfillmentController) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orderID := c.Param("order_id")
	if err := fc.Orders.UpdateDepartmentStatus(orderID, fc.Department, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	fc.respondOrder(c, orderID, "Department status updated")
}

func (fc *FulfillmentController) owns(order models.Order, itemID string) bool {
	for _, it := range order.Items {
		if it.ID == itemID {
			return it.Type == fc.Department
		}
	}
	return false
}

func (fc *FulfillmentController) respondOrder(c *gin.Context, orderID, message string) {
	order, err := fc.Orders.Order(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, order)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type PaymentController struct {
	Orders *services.OrderLedger
}

func NewPaymentController(orders *services.OrderLedger) *PaymentController {
	return &PaymentController{Orders: orders}
}

// GetOpenBills -> unpaid orders, with the ones fully served first
func (pc *PaymentController) GetOpenBills(c *gin.Context) {
	ready := make([]models.Order, 0)
	waiting := make([]models.Order, 0)
	for _, o := range pc.Orders.Orders() {
		switch o.Status {
		case models.OrderStatusServed:
			ready = append(ready, o)
		case models.OrderStatusPending:
			waiting = append(waiting, o)
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Open bills", append(ready, waiting...))
}

// ProcessPayment -> settles an order; the table is freed and a receipt printed
func (pc *PaymentController) ProcessPayment(c *gin.Context) {
	var req struct {
		PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,oneof=cash card"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orderID := c.Param("order_id")
	if err := pc.Orders.FinalizePayment(orderID, req.PaymentMethod); err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := pc.Orders.Order(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"method":   req.PaymentMethod,
		"subject":  c.GetString("subject"),
	}).Info("payment recorded")
	utils.RespondJSON(c, http.StatusOK, "Payment completed", order)
}

package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-floor/printing"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type ReceiptController struct {
	Orders    *services.OrderLedger
	Formatter *printing.Formatter
	// Metrics reports the print queue, nil when printing is not wired.
	Metrics func() printing.Metrics
}

func NewReceiptController(orders *services.OrderLedger, formatter *printing.Formatter, metrics func() printing.Metrics) *ReceiptController {
	return &ReceiptController{Orders: orders, Formatter: formatter, Metrics: metrics}
}

// GetReceipt -> receipt text of a paid order; ?format=text returns it as plain text
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	order, err := rc.Orders.Order(c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !order.IsPaid() {
		utils.RespondError(c, http.StatusUnprocessableEntity, fmt.Errorf("order %s is not paid yet", order.ID))
		return
	}

	ticket := rc.Formatter.Receipt(order)
	if c.Query("format") == "text" {
		c.String(http.StatusOK, ticket.Text)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt", ticket)
}

// GetPrintStatus -> counters of the print dispatcher
func (rc *ReceiptController) GetPrintStatus(c *gin.Context) {
	if rc.Metrics == nil {
		utils.RespondJSON(c, http.StatusOK, "Print status", printing.Metrics{})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Print status", rc.Metrics())
}

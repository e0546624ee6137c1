package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type TableController struct {
	Tables *services.TableRegistry
	Orders *services.OrderLedger
}

func NewTableController(tables *services.TableRegistry, orders *services.OrderLedger) *TableController {
	return &TableController{Tables: tables, Orders: orders}
}

type tableRequest struct {
	Number int `json:"number" binding:"required,gt=0"`
	Seats  int `json:"seats" binding:"required,gt=0"`
}

// CreateTable -> adds a table to the floor plan
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.AddTable(req.Number, req.Seats)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> every table, optionally filtered by ?status=
func (tc *TableController) GetAllTables(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		s := models.TableStatus(status)
		if !s.Valid() {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown table status %q", status))
			return
		}
		utils.RespondJSON(c, http.StatusOK, "List of tables", tc.Tables.TablesByStatus(s))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tc.Tables.Tables())
}

// GetTable -> one table together with its active order, if any
func (tc *TableController) GetTable(c *gin.Context) {
	table, err := tc.Tables.Table(c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data := gin.H{"table": table}
	if order, ok := tc.Orders.ActiveOrderForTable(table.ID); ok {
		data["active_order"] = order
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", data)
}

func (tc *TableController) GetTableByNumber(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid table number %q", c.Param("number")))
		return
	}
	table, err := tc.Tables.TableByNumber(number)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> renumber or reseat
func (tc *TableController) UpdateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.UpdateTable(c.Param("table_id"), req.Number, req.Seats)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	if err := tc.Tables.DeleteTable(c.Param("table_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}

// ReserveTable -> available to reserved, with the guest name and time
func (tc *TableController) ReserveTable(c *gin.Context) {
	var req struct {
		Name string    `json:"name" binding:"required,max=100"`
		Time time.Time `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.ReserveTable(c.Param("table_id"), req.Name, req.Time)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table reserved", table)
}

func (tc *TableController) CancelReservation(c *gin.Context) {
	table, err := tc.Tables.CancelReservation(c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", table)
}

// GetTableStats -> number of tables per status
func (tc *TableController) GetTableStats(c *gin.Context) {
	counts := tc.Tables.StatusCounts()
	total := 0
	for _, n := range counts {
		total += n
	}
	utils.RespondJSON(c, http.StatusOK, "Table statistics", gin.H{
		"total":     total,
		"by_status": counts,
	})
}

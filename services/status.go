package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-floor/models"
)

// DepartmentStatus is served iff every item of type t is served. A department
// with no items is served.
func DepartmentStatus(items []models.OrderItem, t models.ItemType) models.OrderStatus {
	for _, item := range items {
		if item.Type == t && item.Status != models.ItemStatusServed {
			return models.OrderStatusPending
		}
	}
	return models.OrderStatusServed
}

// AggregateStatus is served iff both departments are served.
func AggregateStatus(food, drink models.OrderStatus) models.OrderStatus {
	if food == models.OrderStatusServed && drink == models.OrderStatusServed {
		return models.OrderStatusServed
	}
	return models.OrderStatusPending
}

// OrderTotal sums price times quantity over items.
func OrderTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// recompute re-derives total, department statuses and the aggregate status of
// an unpaid order from its items. Paid orders keep their status.
func recompute(o *models.Order) {
	o.Total = OrderTotal(o.Items)
	if o.IsPaid() {
		return
	}
	o.FoodStatus = DepartmentStatus(o.Items, models.ItemTypeFood)
	o.DrinkStatus = DepartmentStatus(o.Items, models.ItemTypeDrink)
	o.Status = AggregateStatus(o.FoodStatus, o.DrinkStatus)
}

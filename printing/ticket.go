package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// Station is where a ticket comes out.
type Station string

const (
	StationKitchen Station = "kitchen"
	StationBar     Station = "bar"
	StationCashier Station = "cashier"
)

var Stations = []Station{StationKitchen, StationBar, StationCashier}

// Event names the ledger notification a ticket was printed for.
type Event string

const (
	EventOrderPlaced      Event = "order_placed"
	EventOrderAmended     Event = "order_amended"
	EventPaymentCompleted Event = "payment_completed"
)

type Ticket struct {
	Station     Station   `json:"station"`
	Event       Event     `json:"event"`
	OrderID     string    `json:"order_id"`
	TableNumber int       `json:"table_number"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Formatter lays out kitchen, bar and receipt tickets.
type Formatter struct {
	RestaurantName string
	CurrencySymbol string
	Location       *time.Location
}

func NewFormatter(restaurantName, currencySymbol string) *Formatter {
	return &Formatter{
		RestaurantName: restaurantName,
		CurrencySymbol: currencySymbol,
		Location:       time.Local,
	}
}

// Tickets routes one ledger event to stations. Food lines go to the kitchen,
// drink lines to the bar, and a paid order becomes a receipt at the cashier.
// An amendment only reprints the lines still waiting to be served, counting
// just the units not yet made.
func (f *Formatter) Tickets(event Event, order models.Order) []Ticket {
	if event == EventPaymentCompleted {
		return []Ticket{f.Receipt(order)}
	}

	var tickets []Ticket
	for _, dept := range models.Departments {
		items := order.ItemsOf(dept)
		if event == EventOrderAmended {
			items = pendingOnly(items)
		}
		if len(items) == 0 {
			continue
		}
		station := StationKitchen
		if dept == models.ItemTypeDrink {
			station = StationBar
		}
		tickets = append(tickets, f.stationTicket(station, event, order, items))
	}
	return tickets
}

func (f *Formatter) stationTicket(station Station, event Event, order models.Order, items []models.OrderItem) Ticket {
	title := strings.ToUpper(string(station)) + " ORDER"
	if event == EventOrderAmended {
		title += " (UPDATE)"
	}

	var b strings.Builder
	f.header(&b, title, order)
	b.WriteString("Items:\n")
	for _, item := range items {
		quantity := item.Quantity
		if event == EventOrderAmended {
			quantity = item.ToPrepare()
		}
		fmt.Fprintf(&b, "- %dx %s (%s)\n", quantity, item.Name, f.money(item.Price))
		if event == EventOrderAmended && item.ServedQuantity > 0 && quantity < item.Quantity {
			fmt.Fprintf(&b, "  Already served: %d\n", item.Quantity-quantity)
		}
		if item.Notes != "" {
			fmt.Fprintf(&b, "  Note: %s\n", item.Notes)
		}
	}
	b.WriteString(strings.Repeat("=", 18) + "\n")

	return Ticket{
		Station:     station,
		Event:       event,
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Title:       title,
		Text:        b.String(),
		CreatedAt:   time.Now(),
	}
}

// Receipt is the customer copy printed at payment.
func (f *Formatter) Receipt(order models.Order) Ticket {
	var b strings.Builder
	if f.RestaurantName != "" {
		b.WriteString(f.RestaurantName + "\n")
	}
	f.header(&b, "RECEIPT", order)
	b.WriteString("Items:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %dx %s (%s) %s\n", item.Quantity, item.Name, f.money(item.Price), f.money(item.Subtotal()))
	}
	fmt.Fprintf(&b, "Subtotal: %s\n", f.money(order.Total))
	fmt.Fprintf(&b, "Total: %s\n", f.money(order.Total))
	if order.PaymentMethod != nil {
		fmt.Fprintf(&b, "Payment: %s\n", paymentLabel(*order.PaymentMethod))
	}
	b.WriteString(strings.Repeat("=", 18) + "\n")

	return Ticket{
		Station:     StationCashier,
		Event:       EventPaymentCompleted,
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Title:       "RECEIPT",
		Text:        b.String(),
		CreatedAt:   time.Now(),
	}
}

func (f *Formatter) header(b *strings.Builder, title string, order models.Order) {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	fmt.Fprintf(b, "=== %s ===\n", title)
	fmt.Fprintf(b, "Order ID: %s\n", order.ID)
	fmt.Fprintf(b, "Table: %d\n", order.TableNumber)
	fmt.Fprintf(b, "Time: %s\n", order.CreatedAt.In(loc).Format("02/01/2006 15:04"))
}

func (f *Formatter) money(d decimal.Decimal) string {
	return utils.FormatCurrency(d, f.CurrencySymbol)
}

func pendingOnly(items []models.OrderItem) []models.OrderItem {
	var out []models.OrderItem
	for _, item := range items {
		if item.Status == models.ItemStatusPending {
			out = append(out, item)
		}
	}
	return out
}

func paymentLabel(m models.PaymentMethod) string {
	if m == models.PaymentMethodCash {
		return "Contanti"
	}
	return "Carta"
}

package services

import "github.com/yeremiapane/restaurant-floor/models"

// PrintSink receives full order snapshots at the three print points.
// Implementations must return immediately and never report failure back.
type PrintSink interface {
	OrderPlaced(order models.Order)
	OrderAmended(order models.Order)
	PaymentCompleted(order models.Order)
}

// TableChange names what happened to a table.
type TableChange string

const (
	TableCreated TableChange = "created"
	TableUpdated TableChange = "updated"
	TableDeleted TableChange = "deleted"
)

// Broadcaster pushes committed changes to live dashboards.
type Broadcaster interface {
	BroadcastOrder(order models.Order)
	BroadcastOrderDeleted(orderID string)
	BroadcastTable(change TableChange, table models.Table)
}

// PrintSinks fans one event out to several sinks.
type PrintSinks []PrintSink

func (s PrintSinks) OrderPlaced(order models.Order) {
	for _, sink := range s {
		sink.OrderPlaced(order.Clone())
	}
}

func (s PrintSinks) OrderAmended(order models.Order) {
	for _, sink := range s {
		sink.OrderAmended(order.Clone())
	}
}

func (s PrintSinks) PaymentCompleted(order models.Order) {
	for _, sink := range s {
		sink.PaymentCompleted(order.Clone())
	}
}

type noopSink struct{}

func (noopSink) OrderPlaced(models.Order) {}
func (noopSink) OrderAmended(models.Order) {}
func (noopSink) PaymentCompleted(models.Order) {}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastOrder(models.Order) {}
func (noopBroadcaster) BroadcastOrderDeleted(string) {}
func (noopBroadcaster) BroadcastTable(TableChange, models.Table) {}

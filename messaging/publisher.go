package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/printing"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

var _ services.PrintSink = (*Publisher)(nil)

// Channel is the part of *amqp091.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher forwards formatted tickets to a fanout exchange, one message per
// ticket, so remote print stations can print them. Like the local dispatcher it
// never blocks the caller.
type Publisher struct {
	channel   Channel
	conn      *amqp091.Connection
	exchange  string
	formatter *printing.Formatter
	tickets   chan printing.Ticket
	StopChan  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// Dial connects to RabbitMQ and declares the exchange.
func Dial(url, exchange string, formatter *printing.Formatter) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := NewPublisher(ch, exchange, formatter)
	p.conn = conn
	return p, nil
}

func NewPublisher(ch Channel, exchange string, formatter *printing.Formatter) *Publisher {
	return &Publisher{
		channel:   ch,
		exchange:  exchange,
		formatter: formatter,
		tickets:   make(chan printing.Ticket, 128),
		StopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (p *Publisher) OrderPlaced(order models.Order) {
	p.enqueue(printing.EventOrderPlaced, order)
}

func (p *Publisher) OrderAmended(order models.Order) {
	p.enqueue(printing.EventOrderAmended, order)
}

func (p *Publisher) PaymentCompleted(order models.Order) {
	p.enqueue(printing.EventPaymentCompleted, order)
}

func (p *Publisher) enqueue(event printing.Event, order models.Order) {
	for _, t := range p.formatter.Tickets(event, order) {
		select {
		case p.tickets <- t:
		default:
			utils.ErrorLogger.WithField("order_id", t.OrderID).Error("publish queue full, ticket dropped")
		}
	}
}

// Start publishes queued tickets until Stop.
func (p *Publisher) Start() {
	go func() {
		defer close(p.done)
		for {
			select {
			case t := <-p.tickets:
				p.publish(t)
			case <-p.StopChan:
				for {
					select {
					case t := <-p.tickets:
						p.publish(t)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop flushes the queue and closes the connection, if the publisher owns one.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.StopChan)
		<-p.done
		if p.conn != nil {
			p.conn.Close()
		}
	})
}

func (p *Publisher) publish(t printing.Ticket) {
	body, err := json.Marshal(t)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("marshal ticket")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, "", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Type:         string(t.Event),
		Headers:      amqp091.Table{"station": string(t.Station)},
		Timestamp:    time.Now(),
		Body:         body,
	})
	fields := logrus.Fields{"exchange": p.exchange, "station": t.Station, "order_id": t.OrderID}
	if err != nil {
		utils.ErrorLogger.WithFields(fields).WithError(err).Error("failed to publish ticket")
		return
	}
	utils.InfoLogger.WithFields(fields).Debug("ticket published")
}

package printing

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

var _ services.PrintSink = (*Dispatcher)(nil)

// Metrics counts what the dispatcher did since start.
type Metrics struct {
	Printed int64 `json:"printed"`
	Failed  int64 `json:"failed"`
	Retried int64 `json:"retried"`
	Dropped int64 `json:"dropped"`
	Pending int   `json:"pending_retries"`
}

type job struct {
	ticket   Ticket
	attempts int
}

// Dispatcher is the print sink of the order ledger. Events are formatted and
// queued without blocking the caller; a single worker prints them and keeps
// failed tickets in a retry queue.
type Dispatcher struct {
	formatter     *Formatter
	printer       Printer
	jobs          chan job
	retryQueue    []job
	RetryInterval time.Duration
	MaxRetries    int
	PrintTimeout  time.Duration
	metrics       Metrics
	mutex         sync.Mutex
	StopChan      chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
}

func NewDispatcher(formatter *Formatter, printer Printer, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		formatter:     formatter,
		printer:       printer,
		jobs:          make(chan job, queueSize),
		retryQueue:    make([]job, 0),
		RetryInterval: 5 * time.Second,
		MaxRetries:    3,
		PrintTimeout:  10 * time.Second,
		StopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (d *Dispatcher) OrderPlaced(order models.Order) {
	d.enqueue(EventOrderPlaced, order)
}

func (d *Dispatcher) OrderAmended(order models.Order) {
	d.enqueue(EventOrderAmended, order)
}

func (d *Dispatcher) PaymentCompleted(order models.Order) {
	d.enqueue(EventPaymentCompleted, order)
}

func (d *Dispatcher) enqueue(event Event, order models.Order) {
	for _, t := range d.formatter.Tickets(event, order) {
		select {
		case d.jobs <- job{ticket: t}:
		default:
			d.mutex.Lock()
			d.metrics.Dropped++
			d.mutex.Unlock()
			utils.ErrorLogger.WithFields(logrus.Fields{
				"station":  t.Station,
				"order_id": t.OrderID,
			}).Error("print queue full, ticket dropped")
		}
	}
}

// Start runs the worker until Stop.
func (d *Dispatcher) Start() {
	go d.run()
	utils.InfoLogger.Info("print dispatcher started")
}

// Stop prints what is still queued, once, then returns.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.StopChan)
		<-d.done
	})
}

func (d *Dispatcher) Metrics() Metrics {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	m := d.metrics
	m.Pending = len(d.retryQueue)
	return m
}

func (d *Dispatcher) run() {
	defer close(d.done)

	ticker := time.NewTicker(d.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case j := <-d.jobs:
			d.print(j)
		case <-ticker.C:
			d.processRetryQueue()
		case <-d.StopChan:
			for {
				select {
				case j := <-d.jobs:
					j.attempts = d.MaxRetries
					d.print(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) processRetryQueue() {
	d.mutex.Lock()
	if len(d.retryQueue) == 0 {
		d.mutex.Unlock()
		return
	}
	queue := make([]job, len(d.retryQueue))
	copy(queue, d.retryQueue)
	d.retryQueue = make([]job, 0)
	d.metrics.Retried += int64(len(queue))
	d.mutex.Unlock()

	for _, j := range queue {
		d.print(j)
	}
}

func (d *Dispatcher) print(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.PrintTimeout)
	defer cancel()

	fields := logrus.Fields{
		"station":  j.ticket.Station,
		"event":    j.ticket.Event,
		"order_id": j.ticket.OrderID,
		"attempt":  j.attempts + 1,
	}

	err := d.printer.Print(ctx, j.ticket)

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if err == nil {
		d.metrics.Printed++
		return
	}
	if j.attempts >= d.MaxRetries {
		d.metrics.Failed++
		utils.ErrorLogger.WithFields(fields).WithError(err).Error("giving up on ticket")
		return
	}
	j.attempts++
	d.retryQueue = append(d.retryQueue, j)
	utils.ErrorLogger.WithFields(fields).WithError(err).Error("print failed, will retry")
}

package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// Event types
const (
	EventOrderUpdate  = "order_update"
	EventOrderDelete  = "order_delete"
	EventTableUpdate  = "table_update"
	EventTableCreate  = "table_create"
	EventTableDelete  = "table_delete"
	EventKitchenQueue = "kitchen_update"
	EventBarQueue     = "bar_update"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

var _ services.Broadcaster = (*Hub)(nil)

// Hub keeps the connected dashboards (waiter, kitchen, bar, cashier) and
// pushes every committed change to them. Broadcasts are queued; Run writes them.
type Hub struct {
	clients  map[*websocket.Conn]string // conn -> role
	mutex    sync.Mutex
	messages chan Message
	StopChan chan struct{}
}

func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Hub{
		clients:  make(map[*websocket.Conn]string),
		messages: make(chan Message, queueSize),
		StopChan: make(chan struct{}),
	}
}

// Run delivers queued messages until Stop.
func (h *Hub) Run() {
	for {
		select {
		case msg := <-h.messages:
			h.send(msg)
		case <-h.StopChan:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.StopChan)
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
	utils.InfoLogger.WithFields(logrus.Fields{"role": role, "clients": len(h.clients)}).Info("dashboard connected")
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastOrder(order models.Order) {
	h.publish(Message{Event: EventOrderUpdate, Data: order})

	// department queues refresh the kitchen and bar boards
	for _, dept := range models.Departments {
		if !order.HasType(dept) {
			continue
		}
		event := EventKitchenQueue
		if dept == models.ItemTypeDrink {
			event = EventBarQueue
		}
		h.publish(Message{Event: event, Data: map[string]interface{}{
			"order_id": order.ID,
			"table":    order.TableNumber,
			"status":   order.DepartmentStatus(dept),
		}})
	}
}

func (h *Hub) BroadcastOrderDeleted(orderID string) {
	h.publish(Message{Event: EventOrderDelete, Data: map[string]string{"order_id": orderID}})
}

func (h *Hub) BroadcastTable(change services.TableChange, table models.Table) {
	event := EventTableUpdate
	switch change {
	case services.TableCreated:
		event = EventTableCreate
	case services.TableDeleted:
		event = EventTableDelete
	}
	h.publish(Message{Event: event, Data: table})
}

func (h *Hub) publish(msg Message) {
	select {
	case h.messages <- msg:
	default:
		utils.ErrorLogger.WithField("event", msg.Event).Error("kds queue full, message dropped")
	}
}

func (h *Hub) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("marshal kds message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"role": role, "event": msg.Event}).WithError(err).
				Error("dropping dashboard after failed write")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-floor/kds"
	"github.com/yeremiapane/restaurant-floor/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

// KDSHandler -> websocket feed of order and table changes for the floor screens
func (kc *KDSController) KDSHandler(c *gin.Context) {
	role := c.GetString("role")
	if !utils.ValidRole(role) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("websocket upgrade failed")
		return
	}

	kc.Hub.Register(ws, role)
	defer kc.Hub.Unregister(ws)

	// Clients only listen; reading keeps the pong handling alive and detects close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

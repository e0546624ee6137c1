package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-floor/config"
	"github.com/yeremiapane/restaurant-floor/controllers"
	"github.com/yeremiapane/restaurant-floor/kds"
	"github.com/yeremiapane/restaurant-floor/middlewares"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/printing"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// Deps are the long-lived components the HTTP layer talks to.
type Deps struct {
	Orders    *services.OrderLedger
	Tables    *services.TableRegistry
	Catalog   *services.Catalog
	Hub       *kds.Hub
	Formatter *printing.Formatter
	// PrintMetrics is optional.
	PrintMetrics func() printing.Metrics
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	limiter := middlewares.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.Server.AllowOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(limiter.RateLimit())

	tableCtrl := controllers.NewTableController(deps.Tables, deps.Orders)
	orderCtrl := controllers.NewOrderController(deps.Orders, deps.Tables, deps.Catalog)
	menuCtrl := controllers.NewMenuController(deps.Catalog)
	kitchenCtrl := controllers.NewFulfillmentController(deps.Orders, models.ItemTypeFood)
	barCtrl := controllers.NewFulfillmentController(deps.Orders, models.ItemTypeDrink)
	paymentCtrl := controllers.NewPaymentController(deps.Orders)
	receiptCtrl := controllers.NewReceiptController(deps.Orders, deps.Formatter, deps.PrintMetrics)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if deps.Hub != nil {
		kdsCtrl := controllers.NewKDSController(deps.Hub)
		ws := r.Group("/ws")
		ws.Use(middlewares.WebSocketAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Disabled))
		ws.GET("", kdsCtrl.KDSHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Disabled))

	// MENU (every role)
	api.GET("/menu", menuCtrl.GetAllMenus)
	api.GET("/menu/categories", menuCtrl.GetCategories)
	api.GET("/menu/items/:menu_id", menuCtrl.GetMenu)

	// TABLES
	tables := api.Group("/tables")
	{
		tables.GET("", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier), tableCtrl.GetAllTables)
		tables.GET("/stats", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier), tableCtrl.GetTableStats)
		tables.GET("/number/:number", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier), tableCtrl.GetTableByNumber)
		tables.GET("/:table_id", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier), tableCtrl.GetTable)
		tables.GET("/:table_id/order", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier), orderCtrl.GetTableOrder)

		tables.POST("/:table_id/reservation", middlewares.RoleRequired(utils.RoleWaiter), tableCtrl.ReserveTable)
		tables.DELETE("/:table_id/reservation", middlewares.RoleRequired(utils.RoleWaiter), tableCtrl.CancelReservation)

		// floor plan changes are admin only
		tables.POST("", middlewares.RoleRequired(), tableCtrl.CreateTable)
		tables.PUT("/:table_id", middlewares.RoleRequired(), tableCtrl.UpdateTable)
		tables.DELETE("/:table_id", middlewares.RoleRequired(), tableCtrl.DeleteTable)
	}

	// ORDERS (waiter)
	orders := api.Group("/orders")
	{
		orders.GET("", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier), orderCtrl.GetOrders)
		orders.GET("/:order_id", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier, utils.RoleKitchen, utils.RoleBar), orderCtrl.GetOrder)
		orders.POST("", middlewares.RoleRequired(utils.RoleWaiter), orderCtrl.CreateOrder)
		orders.POST("/:order_id/items", middlewares.RoleRequired(utils.RoleWaiter), orderCtrl.AddItem)
		orders.PATCH("/:order_id/items/:item_id", middlewares.RoleRequired(utils.RoleWaiter), orderCtrl.UpdateItem)
		orders.DELETE("/:order_id/items/:item_id", middlewares.RoleRequired(utils.RoleWaiter), orderCtrl.RemoveItem)
		orders.POST("/:order_id/print", middlewares.RoleRequired(utils.RoleWaiter, utils.RoleCashier), orderCtrl.PrintOrder)
		orders.GET("/:order_id/receipt", middlewares.RoleRequired(utils.RoleCashier), receiptCtrl.GetReceipt)
		orders.DELETE("/:order_id", middlewares.RoleRequired(), orderCtrl.DeleteOrder)
	}

	// KITCHEN
	kitchen := api.Group("/kitchen")
	kitchen.Use(middlewares.RoleRequired(utils.RoleKitchen))
	{
		kitchen.GET("/orders", kitchenCtrl.GetQueue)
		kitchen.PATCH("/orders/:order_id", kitchenCtrl.UpdateStatus)
		kitchen.PATCH("/orders/:order_id/items/:item_id", kitchenCtrl.UpdateItemStatus)
	}

	// BAR
	bar := api.Group("/bar")
	bar.Use(middlewares.RoleRequired(utils.RoleBar))
	{
		bar.GET("/orders", barCtrl.GetQueue)
		bar.PATCH("/orders/:order_id", barCtrl.UpdateStatus)
		bar.PATCH("/orders/:order_id/items/:item_id", barCtrl.UpdateItemStatus)
	}

	// CASHIER
	cashier := api.Group("/cashier")
	cashier.Use(middlewares.RoleRequired(utils.RoleCashier))
	{
		cashier.GET("/bills", paymentCtrl.GetOpenBills)
		cashier.POST("/orders/:order_id/pay",
			middlewares.PaymentRateLimiter(5, 10),
			middlewares.LogPaymentRequest(),
			paymentCtrl.ProcessPayment)
		cashier.GET("/print-status", receiptCtrl.GetPrintStatus)
	}

	return r
}

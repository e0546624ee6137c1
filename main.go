package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-floor/config"
	"github.com/yeremiapane/restaurant-floor/database"
	"github.com/yeremiapane/restaurant-floor/kds"
	"github.com/yeremiapane/restaurant-floor/messaging"
	"github.com/yeremiapane/restaurant-floor/printing"
	"github.com/yeremiapane/restaurant-floor/router"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type floorStore interface {
	services.OrderStore
	services.TableStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.Server.LogLevel, cfg.Server.LogFormat)

	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.Disabled {
		utils.InfoLogger.Warn("authentication is disabled, every request acts as admin")
	}

	store, err := openStore(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open store: %v", err)
	}

	seed, err := database.LoadSeedFile(cfg.Store.SeedFile)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load seed: %v", err)
	}
	catalog := services.NewCatalog(seed.Categories, seed.MenuItems)

	// KDS hub
	hub := kds.NewHub(256)
	go hub.Run()

	// Printing
	formatter := printing.NewFormatter(cfg.Restaurant.Name, cfg.Restaurant.CurrencySymbol)
	printer, err := newPrinter(cfg.Printing)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up printer: %v", err)
	}
	dispatcher := printing.NewDispatcher(formatter, printer, 128)
	dispatcher.MaxRetries = cfg.Printing.Retries
	dispatcher.RetryInterval = cfg.Printing.RetryInterval
	dispatcher.Start()

	sinks := services.PrintSinks{dispatcher}
	var publisher *messaging.Publisher
	if cfg.Messaging.RabbitMQURL != "" {
		publisher, err = messaging.Dial(cfg.Messaging.RabbitMQURL, cfg.Messaging.Exchange, formatter)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher.Start()
		sinks = append(sinks, publisher)
	}

	tables, err := services.NewTableRegistry(store, services.WithTableBroadcaster(hub))
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load tables: %v", err)
	}
	if n, err := tables.Seed(seed.Tables); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed tables: %v", err)
	} else if n > 0 {
		utils.InfoLogger.Infof("Seeded %d tables", n)
	}

	orders, err := services.NewOrderLedger(store, tables,
		services.WithPrintSink(sinks),
		services.WithOrderBroadcaster(hub),
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load orders: %v", err)
	}

	r := router.SetupRouter(cfg, router.Deps{
		Orders:       orders,
		Tables:       tables,
		Catalog:      catalog,
		Hub:          hub,
		Formatter:    formatter,
		PrintMetrics: dispatcher.Metrics,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Fatal(err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.WithError(err).Error("server shutdown")
	}

	hub.Stop()
	dispatcher.Stop()
	if publisher != nil {
		publisher.Stop()
	}
	utils.InfoLogger.Info("Bye")
}

func openStore(cfg *config.Config) (floorStore, error) {
	switch {
	case cfg.IsSQL():
		db, err := config.OpenDB(cfg.Store)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		utils.InfoLogger.Infof("Using %s store", cfg.Store.Driver)
		return database.NewGormStore(db), nil

	case cfg.Store.Driver == config.DriverRedis:
		store := database.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr}))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		utils.InfoLogger.Infof("Using redis store at %s", cfg.Store.RedisAddr)
		return store, nil
	}

	utils.InfoLogger.Warn("Using in-memory store, nothing survives a restart")
	return database.NewMemoryStore(), nil
}

// newPrinter picks the printer for PRINTER_MODE. In tcp mode a station
// without an address falls back to the log, except the cashier which saves
// receipts as PDF.
func newPrinter(cfg config.PrintingConfig) (printing.Printer, error) {
	switch cfg.Mode {
	case config.PrinterPDF:
		pdf, err := printing.NewPDFPrinter(cfg.ReceiptDir)
		if err != nil {
			return nil, err
		}
		return pdf, nil

	case config.PrinterTCP:
		routes := map[printing.Station]printing.Printer{}
		if cfg.KitchenAddr != "" {
			routes[printing.StationKitchen] = printing.NewTCPPrinter(cfg.KitchenAddr)
		}
		if cfg.BarAddr != "" {
			routes[printing.StationBar] = printing.NewTCPPrinter(cfg.BarAddr)
		}
		if cfg.CashierAddr != "" {
			routes[printing.StationCashier] = printing.NewTCPPrinter(cfg.CashierAddr)
		} else {
			pdf, err := printing.NewPDFPrinter(cfg.ReceiptDir)
			if err != nil {
				return nil, err
			}
			routes[printing.StationCashier] = pdf
		}
		return printing.StationRouter{Routes: routes, Fallback: printing.LogPrinter{}}, nil
	}
	return printing.LogPrinter{}, nil
}

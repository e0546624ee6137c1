package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-floor/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Printer modes.
const (
	PrinterLog = "log"
	PrinterTCP = "tcp"
	PrinterPDF = "pdf"
)

type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Auth       AuthConfig
	Printing   PrintingConfig
	Messaging  MessagingConfig
	Restaurant RestaurantConfig
}

type ServerConfig struct {
	Port      string
	GinMode   string
	LogLevel    string
	LogFormat   string
	AllowOrigin string
}

type StoreConfig struct {
	Driver    string
	DSN       string
	RedisAddr string
	SeedFile  string
}

type AuthConfig struct {
	JWTSecret      []byte
	Disabled       bool
	RateLimitRPS   float64
	RateLimitBurst int
}

type PrintingConfig struct {
	Mode          string
	KitchenAddr   string
	BarAddr       string
	CashierAddr   string
	ReceiptDir    string
	Retries       int
	RetryInterval time.Duration
}

type MessagingConfig struct {
	RabbitMQURL string
	Exchange    string
}

type RestaurantConfig struct {
	Name           string
	CurrencySymbol string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.InfoLogger.Warnf("could not read .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
			AllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
		},
		Store: StoreConfig{
			Driver:    strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
			DSN:       getEnv("DB_DSN", "restaurant.db"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			SeedFile:  getEnv("SEED_FILE", "data/seed.yaml"),
		},
		Auth: AuthConfig{
			JWTSecret: []byte(getEnv("JWT_SECRET", "")),
		},
		Printing: PrintingConfig{
			Mode:        strings.ToLower(getEnv("PRINTER_MODE", PrinterLog)),
			KitchenAddr: getEnv("PRINTER_KITCHEN_ADDR", ""),
			BarAddr:     getEnv("PRINTER_BAR_ADDR", ""),
			CashierAddr: getEnv("PRINTER_CASHIER_ADDR", ""),
			ReceiptDir:  getEnv("RECEIPT_DIR", "receipts"),
		},
		Messaging: MessagingConfig{
			RabbitMQURL: getEnv("RABBITMQ_URL", ""),
			Exchange:    getEnv("RABBITMQ_EXCHANGE", "print_events"),
		},
		Restaurant: RestaurantConfig{
			Name:           getEnv("RESTAURANT_NAME", "Ristorante"),
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "€"),
		},
	}

	var err error
	if cfg.Auth.Disabled, err = getBool("AUTH_DISABLED", false); err != nil {
		return nil, err
	}
	if cfg.Auth.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.Auth.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}
	if cfg.Printing.Retries, err = getInt("PRINT_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.Printing.RetryInterval, err = getDuration("PRINT_RETRY_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.Store.Driver)
	}
	switch c.Printing.Mode {
	case PrinterLog, PrinterTCP, PrinterPDF:
	default:
		return fmt.Errorf("PRINTER_MODE: unknown mode %q", c.Printing.Mode)
	}
	if !c.Auth.Disabled && len(c.Auth.JWTSecret) == 0 {
		return fmt.Errorf("JWT_SECRET is required unless AUTH_DISABLED=true")
	}
	if c.Printing.Retries < 0 {
		return fmt.Errorf("PRINT_RETRIES must not be negative")
	}
	if c.Printing.RetryInterval <= 0 {
		return fmt.Errorf("PRINT_RETRY_INTERVAL must be positive")
	}
	return nil
}

// IsSQL reports whether the store driver is one of the gorm backends.
func (c *Config) IsSQL() bool {
	switch c.Store.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
		return true
	}
	return false
}

// OpenDB opens the gorm connection for the configured SQL driver.
func OpenDB(cfg StoreConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("driver %q is not a SQL driver", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

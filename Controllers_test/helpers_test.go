package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-floor/database"
	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/services"
)

// testFloor is a registry and ledger over an in-memory SQLite store.
type testFloor struct {
	DB      *gorm.DB
	Tables  *services.TableRegistry
	Orders  *services.OrderLedger
	Catalog *services.Catalog
}

func setupTestFloor(t *testing.T) *testFloor {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := database.NewGormStore(db)
	tables, err := services.NewTableRegistry(store)
	require.NoError(t, err)
	orders, err := services.NewOrderLedger(store, tables)
	require.NoError(t, err)

	return &testFloor{
		DB:      db,
		Tables:  tables,
		Orders:  orders,
		Catalog: services.NewCatalog(testCategories(), testMenu()),
	}
}

func testCategories() []models.Category {
	return []models.Category{
		{ID: "pizze", Name: "Pizze", Type: models.ItemTypeFood, Order: 1},
		{ID: "dolci", Name: "Dolci", Type: models.ItemTypeFood, Order: 2},
		{ID: "bevande", Name: "Bevande", Type: models.ItemTypeDrink, Order: 3},
	}
}

func testMenu() []models.MenuItem {
	item := func(id, name, price, category string, t models.ItemType, available bool) models.MenuItem {
		return models.MenuItem{ID: id, Name: name, Price: decimal.RequireFromString(price),
			CategoryID: category, Type: t, Available: available}
	}
	return []models.MenuItem{
		item("margherita", "Margherita", "8.50", "pizze", models.ItemTypeFood, true),
		item("tiramisu", "Tiramisù", "5.00", "dolci", models.ItemTypeFood, true),
		item("birra", "Birra", "4.00", "bevande", models.ItemTypeDrink, true),
		item("acqua", "Acqua", "1.50", "bevande", models.ItemTypeDrink, true),
		item("calzone", "Calzone", "9.00", "pizze", models.ItemTypeFood, false),
	}
}

func (f *testFloor) addTable(t *testing.T, number int) models.Table {
	t.Helper()
	table, err := f.Tables.AddTable(number, 4)
	require.NoError(t, err)
	return table
}

// openOrder places an order through the ledger directly.
func (f *testFloor) openOrder(t *testing.T, table models.Table, menuIDs ...string) models.Order {
	t.Helper()
	lines := make([]services.ItemInput, 0, len(menuIDs))
	for _, id := range menuIDs {
		menu, err := f.Catalog.MenuItem(id)
		require.NoError(t, err)
		lines = append(lines, services.ItemInput{Menu: menu, Quantity: 1})
	}
	id, err := f.Orders.CreateOrder(table.ID, table.Number, lines)
	require.NoError(t, err)
	order, err := f.Orders.Order(id)
	require.NoError(t, err)
	return order
}

func (f *testFloor) tableStatus(t *testing.T, id string) models.TableStatus {
	t.Helper()
	table, err := f.Tables.Table(id)
	require.NoError(t, err)
	return table.Status
}

// performRequest sends body as JSON, or no body when nil.
func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

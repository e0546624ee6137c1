package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-floor/models"
)

// Keys under which each collection is stored as one JSON document.
const (
	OrderStorageKey = "order-storage"
	TableStorageKey = "table-storage"
)

const redisTimeout = 5 * time.Second

// RedisStore keeps each collection as a single JSON value, replaced on every save.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) LoadOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := s.load(OrderStorageKey, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *RedisStore) SaveOrders(orders []models.Order) error {
	if orders == nil {
		orders = []models.Order{}
	}
	return s.save(OrderStorageKey, orders)
}

func (s *RedisStore) LoadTables() ([]models.Table, error) {
	var tables []models.Table
	if err := s.load(TableStorageKey, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *RedisStore) SaveTables(tables []models.Table) error {
	if tables == nil {
		tables = []models.Table{}
	}
	return s.save(TableStorageKey, tables)
}

func (s *RedisStore) load(key string, v interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis store: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("redis store: decode %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) save(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis store: encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis store: set %s: %w", key, err)
	}
	return nil
}

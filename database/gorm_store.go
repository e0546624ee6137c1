package database

import (
	"fmt"

	"github.com/yeremiapane/restaurant-floor/models"
	"gorm.io/gorm"
)

// GormStore keeps orders and tables in a SQL database. Every save replaces the
// stored collection inside one transaction, so a failed write leaves the
// previous collection in place.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) LoadOrders() ([]models.Order, error) {
	var orders []models.Order
	err := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("gorm store: load orders: %w", err)
	}
	return orders, nil
}

func (s *GormStore) SaveOrders(orders []models.Order) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}

		rows := make([]models.Order, len(orders))
		for i, o := range orders {
			rows[i] = o.Clone()
			for j := range rows[i].Items {
				rows[i].Items[j].OrderID = o.ID
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("gorm store: save orders: %w", err)
	}
	return nil
}

func (s *GormStore) LoadTables() ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.Order("number ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("gorm store: load tables: %w", err)
	}
	return tables, nil
}

func (s *GormStore) SaveTables(tables []models.Table) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Table{}).Error; err != nil {
			return err
		}
		if len(tables) == 0 {
			return nil
		}
		rows := make([]models.Table, len(tables))
		for i, t := range tables {
			rows[i] = t.Clone()
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("gorm store: save tables: %w", err)
	}
	return nil
}

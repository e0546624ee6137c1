package models

import "time"

type Table struct {
	ID              string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Number          int         `gorm:"not null;uniqueIndex" json:"number"`
	Seats           int         `gorm:"not null" json:"seats"`
	Status          TableStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	OrderID         *string     `gorm:"type:varchar(64)" json:"order_id,omitempty"`
	ReservationName *string     `gorm:"type:varchar(100)" json:"reservation_name,omitempty"`
	ReservationTime *time.Time  `json:"reservation_time,omitempty"`
	CreatedAt       time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
}

// Clone returns a copy that shares no pointers with t.
func (t Table) Clone() Table {
	c := t
	if t.OrderID != nil {
		id := *t.OrderID
		c.OrderID = &id
	}
	if t.ReservationName != nil {
		name := *t.ReservationName
		c.ReservationName = &name
	}
	if t.ReservationTime != nil {
		at := *t.ReservationTime
		c.ReservationTime = &at
	}
	return c
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds contact details plus the sequence-allocated customer number.
// CustomerNo is immutable once assigned.
type Customer struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerNo string    `gorm:"column:customer_no;not null;uniqueIndex"`
	Name       string    `gorm:"column:name;not null"`
	Mobile     string    `gorm:"column:mobile;not null"`
	Email      *string   `gorm:"column:email"`
	Address    *string   `gorm:"column:address"`
	State      *string   `gorm:"column:state"`
	Country    *string   `gorm:"column:country"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/shopstack-backend/pkg/enums"
)

// StockMovement is the append-only audit trail of stock mutations. Quantity
// is signed: negative for sales, positive for purchase receipts.
type StockMovement struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	Type      enums.StockMovementType `gorm:"column:type;not null"`
	Quantity  int                     `gorm:"column:quantity;not null"`
	Reference string                  `gorm:"column:reference;not null"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}

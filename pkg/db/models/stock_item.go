package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem tracks the on-hand quantity for a product. QuantityOnHand must
// never go negative; every mutation goes through the inventory ledger's
// conditional updates, never a read-then-write.
type StockItem struct {
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	QuantityOnHand int             `gorm:"column:quantity_on_hand;not null;default:0"`
	PurchasePrice  decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2);not null"`
	SellPrice      decimal.Decimal `gorm:"column:sell_price;type:numeric(12,2);not null"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/shopstack-backend/pkg/enums"
)

// Product is a catalog entry: what the shop can buy and sell.
type Product struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string            `gorm:"column:name;not null"`
	Description   *string           `gorm:"column:description"`
	Brand         *string           `gorm:"column:brand"`
	Category      *string           `gorm:"column:category"`
	Unit          enums.ProductUnit `gorm:"column:unit;not null;default:'pcs'"`
	PurchasePrice decimal.Decimal   `gorm:"column:purchase_price;type:numeric(12,2);not null"`
	SellPrice     decimal.Decimal   `gorm:"column:sell_price;type:numeric(12,2);not null"`
	Stock         *StockItem        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

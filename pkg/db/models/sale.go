package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/shopstack-backend/pkg/enums"
)

// Sale is an immutable record of a completed sale. SaleNo carries the
// formatted sequence identifier (e.g. SO1001); TotalAmount always equals the
// sum of line totals and DueAmount = TotalAmount - PaidAmount >= 0.
type Sale struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleNo        string              `gorm:"column:sale_no;not null;uniqueIndex"`
	SaleNumber    int64               `gorm:"column:sale_number;not null"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaidAmount    decimal.Decimal     `gorm:"column:paid_amount;type:numeric(12,2);not null"`
	DueAmount     decimal.Decimal     `gorm:"column:due_amount;type:numeric(12,2);not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash'"`
	PaymentRef    *string             `gorm:"column:payment_ref"`
	Items         []SaleLineItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Customer      *Customer           `gorm:"foreignKey:CustomerID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// SaleLineItem is one product line on a sale, priced at commit time.
type SaleLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Brand     *string         `gorm:"column:brand"`
	Unit      string          `gorm:"column:unit;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}

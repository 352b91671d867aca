package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
)

// FinalizeInput captures everything needed to commit a sale.
type FinalizeInput struct {
	CustomerID    uuid.UUID
	Items         []LineInput
	PaidAmount    decimal.Decimal
	PaymentMethod string
	PaymentRef    *string
}

// LineInput is one requested product line. Prices are never accepted from the
// caller; they are read from the catalog at commit time.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// SaleDTO is the committed sale payload returned to clients.
type SaleDTO struct {
	ID            uuid.UUID       `json:"id"`
	SaleNo        string          `json:"sale_no"`
	SaleNumber    int64           `json:"sale_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	DueAmount     decimal.Decimal `json:"due_amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentRef    *string         `json:"payment_ref,omitempty"`
	Items         []LineItemDTO   `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineItemDTO is one committed sale line.
type LineItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Brand     *string         `json:"brand,omitempty"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// NewSaleDTO builds a DTO from the persisted model.
func NewSaleDTO(sale *models.Sale) *SaleDTO {
	dto := &SaleDTO{
		ID:            sale.ID,
		SaleNo:        sale.SaleNo,
		SaleNumber:    sale.SaleNumber,
		CustomerID:    sale.CustomerID,
		TotalAmount:   sale.TotalAmount,
		PaidAmount:    sale.PaidAmount,
		DueAmount:     sale.DueAmount,
		PaymentMethod: sale.PaymentMethod.String(),
		PaymentRef:    sale.PaymentRef,
		CreatedAt:     sale.CreatedAt,
	}
	for i := range sale.Items {
		item := &sale.Items[i]
		dto.Items = append(dto.Items, LineItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Brand:     item.Brand,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return dto
}

// NewSaleDTOs maps a slice of models.
func NewSaleDTOs(rows []models.Sale) []SaleDTO {
	dtos := make([]SaleDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewSaleDTO(&rows[i]))
	}
	return dtos
}

// ListResult carries one page of sales plus the cursor for the next one.
type ListResult struct {
	Sales      []SaleDTO `json:"sales"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

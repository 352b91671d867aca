package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Brand         *string         `json:"brand,omitempty"`
	Category      *string         `json:"category,omitempty"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	Stock         *StockDTO       `json:"stock,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockDTO exposes on-hand counts alongside the product.
type StockDTO struct {
	QuantityOnHand int       `json:"quantity_on_hand"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Brand:         product.Brand,
		Category:      product.Category,
		Unit:          product.Unit.String(),
		PurchasePrice: product.PurchasePrice,
		SellPrice:     product.SellPrice,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if product.Stock != nil {
		dto.Stock = &StockDTO{
			QuantityOnHand: product.Stock.QuantityOnHand,
			UpdatedAt:      product.Stock.UpdatedAt,
		}
	}
	return dto
}

// NewProductDTOs maps a slice of models.
func NewProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}

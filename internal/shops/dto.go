package shops

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
)

// ShopDTO exposes the shop profile printed on bills.
type ShopDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	TaxID     *string   `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewShopDTO maps a shop row to its API shape.
func NewShopDTO(shop *models.Shop) *ShopDTO {
	if shop == nil {
		return nil
	}
	return &ShopDTO{
		ID:        shop.ID,
		Name:      shop.Name,
		Address:   shop.Address,
		Phone:     shop.Phone,
		TaxID:     shop.TaxID,
		CreatedAt: shop.CreatedAt,
		UpdatedAt: shop.UpdatedAt,
	}
}

// NewShopDTOs maps a slice of shop rows.
func NewShopDTOs(shops []models.Shop) []ShopDTO {
	out := make([]ShopDTO, 0, len(shops))
	for i := range shops {
		out = append(out, *NewShopDTO(&shops[i]))
	}
	return out
}

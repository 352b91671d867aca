package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
)

// VendorDTO is the supplier payload returned to clients.
type VendorDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Mobile    *string   `json:"mobile,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVendorDTO builds a DTO from the persisted model.
func NewVendorDTO(vendor *models.Vendor) *VendorDTO {
	return &VendorDTO{
		ID:        vendor.ID,
		Name:      vendor.Name,
		Mobile:    vendor.Mobile,
		Email:     vendor.Email,
		Address:   vendor.Address,
		CreatedAt: vendor.CreatedAt,
		UpdatedAt: vendor.UpdatedAt,
	}
}

// PurchaseOrderDTO is the received-delivery payload returned to clients.
type PurchaseOrderDTO struct {
	ID        uuid.UUID       `json:"id"`
	VendorID  uuid.UUID       `json:"vendor_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewPurchaseOrderDTO builds a DTO from the persisted model.
func NewPurchaseOrderDTO(po *models.PurchaseOrder) *PurchaseOrderDTO {
	return &PurchaseOrderDTO{
		ID:        po.ID,
		VendorID:  po.VendorID,
		ProductID: po.ProductID,
		Quantity:  po.Quantity,
		UnitCost:  po.UnitCost,
		TotalCost: po.TotalCost,
		CreatedAt: po.CreatedAt,
	}
}

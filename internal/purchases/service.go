package purchases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/internal/inventory"
	product "github.com/shopstack/shopstack-backend/internal/products"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes supplier and purchase receipt operations.
type Service interface {
	CreateVendor(ctx context.Context, input VendorInput) (*VendorDTO, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*VendorDTO, error)
	ListVendors(ctx context.Context) ([]VendorDTO, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, input VendorInput) (*VendorDTO, error)
	ReceiveOrder(ctx context.Context, input ReceiveOrderInput) (*PurchaseOrderDTO, error)
	ListOrders(ctx context.Context, vendorID *uuid.UUID, limit int) ([]PurchaseOrderDTO, error)
}

// VendorInput captures supplier contact fields.
type VendorInput struct {
	Name    string
	Mobile  *string
	Email   *string
	Address *string
}

// ReceiveOrderInput captures a received delivery. SellPrice is optional; when
// set it refreshes the product's sell price along with the stock row.
type ReceiveOrderInput struct {
	VendorID  uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitCost  decimal.Decimal
	SellPrice *decimal.Decimal
}

type service struct {
	repo        *Repository
	productRepo *product.Repository
	stockRepo   *inventory.Repository
	tx          txRunner
}

// NewService builds the purchases service.
func NewService(repo *Repository, productRepo *product.Repository, stockRepo *inventory.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stockRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, productRepo: productRepo, stockRepo: stockRepo, tx: tx}, nil
}

func (s *service) CreateVendor(ctx context.Context, input VendorInput) (*VendorDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	vendor := &models.Vendor{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Mobile:  input.Mobile,
		Email:   input.Email,
		Address: input.Address,
	}
	if err := s.repo.CreateVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return NewVendorDTO(vendor), nil
}

func (s *service) GetVendor(ctx context.Context, id uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.repo.FindVendorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewVendorDTO(vendor), nil
}

func (s *service) ListVendors(ctx context.Context) ([]VendorDTO, error) {
	vendors, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]VendorDTO, 0, len(vendors))
	for i := range vendors {
		dtos = append(dtos, *NewVendorDTO(&vendors[i]))
	}
	return dtos, nil
}

func (s *service) UpdateVendor(ctx context.Context, id uuid.UUID, input VendorInput) (*VendorDTO, error) {
	vendor, err := s.repo.FindVendorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		vendor.Name = name
	}
	if input.Mobile != nil {
		vendor.Mobile = input.Mobile
	}
	if input.Email != nil {
		vendor.Email = input.Email
	}
	if input.Address != nil {
		vendor.Address = input.Address
	}

	if err := s.repo.UpdateVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return NewVendorDTO(vendor), nil
}

// ReceiveOrder persists the purchase order and applies its stock and price
// effects in one transaction: the on-hand quantity goes up by the received
// amount and the stock row's prices are refreshed from the receipt.
func (s *service) ReceiveOrder(ctx context.Context, input ReceiveOrderInput) (*PurchaseOrderDTO, error) {
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	if input.SellPrice != nil && input.SellPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell price cannot be negative")
	}

	if _, err := s.repo.FindVendorByID(ctx, input.VendorID); err != nil {
		return nil, err
	}

	po := &models.PurchaseOrder{
		ID:        uuid.New(),
		VendorID:  input.VendorID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		UnitCost:  input.UnitCost,
		TotalCost: input.UnitCost.Mul(decimal.NewFromInt(int64(input.Quantity))),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		stockRepo := s.stockRepo.WithTx(tx)

		prod, err := productRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		prod.PurchasePrice = input.UnitCost
		if input.SellPrice != nil {
			prod.SellPrice = *input.SellPrice
		}
		if err := productRepo.Update(ctx, prod); err != nil {
			return err
		}

		if err := s.repo.WithTx(tx).CreateOrder(ctx, po); err != nil {
			return err
		}

		item := &models.StockItem{
			ProductID:      input.ProductID,
			QuantityOnHand: input.Quantity,
			PurchasePrice:  prod.PurchasePrice,
			SellPrice:      prod.SellPrice,
		}
		if err := stockRepo.UpsertItem(ctx, item); err != nil {
			return err
		}
		return stockRepo.RecordMovement(ctx, input.ProductID, enums.StockMovementPurchaseReceipt, input.Quantity, po.ID.String())
	})
	if err != nil {
		return nil, err
	}

	return NewPurchaseOrderDTO(po), nil
}

func (s *service) ListOrders(ctx context.Context, vendorID *uuid.UUID, limit int) ([]PurchaseOrderDTO, error) {
	orders, err := s.repo.ListOrders(ctx, vendorID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]PurchaseOrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *NewPurchaseOrderDTO(&orders[i]))
	}
	return dtos, nil
}

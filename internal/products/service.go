package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/internal/inventory"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

// CreateInput captures a new catalog entry plus its opening stock.
type CreateInput struct {
	Name          string
	Description   *string
	Brand         *string
	Category      *string
	Unit          string
	PurchasePrice decimal.Decimal
	SellPrice     decimal.Decimal
	OpeningStock  int
}

// UpdateInput captures the mutable product fields. Nil means unchanged.
type UpdateInput struct {
	Name          *string
	Description   *string
	Brand         *string
	Category      *string
	Unit          *string
	PurchasePrice *decimal.Decimal
	SellPrice     *decimal.Decimal
}

type service struct {
	repo      *Repository
	stockRepo *inventory.Repository
	tx        txRunner
}

// NewService builds the catalog service.
func NewService(repo *Repository, stockRepo *inventory.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stockRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, stockRepo: stockRepo, tx: tx}, nil
}

// Create persists the product and its stock row in one transaction so a
// catalog entry never exists without an on-hand count.
func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	unit := enums.UnitPiece
	if input.Unit != "" {
		parsed, err := enums.ParseProductUnit(input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		unit = parsed
	}

	product := &models.Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Brand:         input.Brand,
		Category:      input.Category,
		Unit:          unit,
		PurchasePrice: input.PurchasePrice,
		SellPrice:     input.SellPrice,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		item := &models.StockItem{
			ProductID:      product.ID,
			QuantityOnHand: input.OpeningStock,
			PurchasePrice:  input.PurchasePrice,
			SellPrice:      input.SellPrice,
		}
		stockRepo := s.stockRepo.WithTx(tx)
		if err := stockRepo.UpsertItem(ctx, item); err != nil {
			return err
		}
		if input.OpeningStock > 0 {
			return stockRepo.RecordMovement(ctx, product.ID, enums.StockMovementAdjustment, input.OpeningStock, "opening stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, product.ID)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Unit != nil {
		unit, err := enums.ParseProductUnit(*input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		product.Unit = unit
	}
	if input.PurchasePrice != nil {
		if input.PurchasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase price cannot be negative")
		}
		product.PurchasePrice = *input.PurchasePrice
	}
	if input.SellPrice != nil {
		if input.SellPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell price cannot be negative")
		}
		product.SellPrice = *input.SellPrice
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	products, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Products: NewProductDTOs(products)}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.PurchasePrice.IsNegative() || input.SellPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if input.OpeningStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "opening stock cannot be negative")
	}
	return nil
}

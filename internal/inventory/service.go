package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopstack/shopstack-backend/pkg/config"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes stock operations outside the sale path: manual
// adjustments, receipt-driven increments, and low-stock reporting.
type Service interface {
	GetItem(ctx context.Context, productID uuid.UUID) (*models.StockItem, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.StockItem, error)
	ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error)
	ListItems(ctx context.Context) ([]models.StockItem, error)
	ListLowStock(ctx context.Context) ([]models.StockItem, error)
}

// AdjustInput captures a manual stock correction. Quantity is signed.
type AdjustInput struct {
	ProductID uuid.UUID
	Quantity  int
	Reason    string
}

type service struct {
	repo *Repository
	tx   txRunner
	cfg  config.InventoryConfig
}

// NewService builds an inventory service.
func NewService(repo *Repository, tx txRunner, cfg config.InventoryConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, cfg: cfg}, nil
}

func (s *service) GetItem(ctx context.Context, productID uuid.UUID) (*models.StockItem, error) {
	return s.repo.GetItem(ctx, productID)
}

// Adjust applies a signed manual correction and records it in the audit
// trail inside one transaction. Negative corrections go through the same
// conditional decrement as sales, so stock still cannot go negative.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.StockItem, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-zero")
	}

	reference := input.Reason
	if reference == "" {
		reference = "manual adjustment"
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.Quantity > 0 {
			if err := repo.IncrementOnHand(ctx, input.ProductID, input.Quantity); err != nil {
				return err
			}
		} else {
			if err := repo.DecrementOnHand(ctx, input.ProductID, -input.Quantity); err != nil {
				return err
			}
		}
		return repo.RecordMovement(ctx, input.ProductID, enums.StockMovementAdjustment, input.Quantity, reference)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetItem(ctx, input.ProductID)
}

func (s *service) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.ListMovements(ctx, productID, limit)
}

func (s *service) ListItems(ctx context.Context) ([]models.StockItem, error) {
	return s.repo.ListItems(ctx)
}

func (s *service) ListLowStock(ctx context.Context) ([]models.StockItem, error) {
	return s.repo.ListLowStock(ctx, s.cfg.LowStockThreshold)
}

package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/internal/customers"
	"github.com/shopstack/shopstack-backend/internal/inventory"
	product "github.com/shopstack/shopstack-backend/internal/products"
	"github.com/shopstack/shopstack-backend/internal/sequence"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/logger"
	"github.com/shopstack/shopstack-backend/pkg/metrics"
	"github.com/shopstack/shopstack-backend/pkg/pagination"
)

// Service finalizes and reads sales.
type Service interface {
	Finalize(ctx context.Context, input FinalizeInput) (*SaleDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SaleDTO, error)
	GetBySaleNo(ctx context.Context, saleNo string) (*SaleDTO, error)
	List(ctx context.Context, params pagination.Params, customerID *uuid.UUID) (*ListResult, error)
}

type service struct {
	repo         *Repository
	alloc        sequence.Allocator
	stockRepo    *inventory.Repository
	productRepo  *product.Repository
	customerRepo *customers.Repository
	logg         *logger.Logger
	metrics      *metrics.SaleMetrics
}

// NewService builds the sale finalizer. Logger and metrics may be nil.
func NewService(
	repo *Repository,
	alloc sequence.Allocator,
	stockRepo *inventory.Repository,
	productRepo *product.Repository,
	customerRepo *customers.Repository,
	logg *logger.Logger,
	m *metrics.SaleMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if alloc == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if stockRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "sales"})
	}
	return &service{
		repo:         repo,
		alloc:        alloc,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		logg:         logg,
		metrics:      m,
	}, nil
}

// Finalize commits a sale as one transactional unit: allocate the sale
// number, price every line from the catalog, decrement stock, and persist
// the sale. If any step fails nothing is written; in particular a failed
// stock decrement must not leave a half-committed sale or a burned number.
func (s *service) Finalize(ctx context.Context, input FinalizeInput) (*SaleDTO, error) {
	started := time.Now()

	method, err := validateFinalize(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.customerRepo.FindByID(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	var sale *models.Sale
	err = s.alloc.NextWithin(ctx, enums.SequenceSaleNumber, func(ctx context.Context, tx *gorm.DB, number int64) error {
		committed, err := s.finalizeInTx(ctx, tx, input, method, number)
		if err != nil {
			return err
		}
		sale = committed
		return nil
	})
	if err != nil {
		outcome := "error"
		if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
			outcome = "insufficient_stock"
			s.metrics.IncInsufficientStock()
		}
		s.metrics.ObserveFinalizeDuration(outcome, time.Since(started))
		return nil, err
	}

	s.metrics.ObserveFinalizeDuration("success", time.Since(started))
	s.metrics.IncFinalized(method.String())

	logCtx := s.logg.WithSaleID(ctx, sale.SaleNo)
	s.logg.Info(logCtx, "sale finalized")

	return NewSaleDTO(sale), nil
}

func (s *service) finalizeInTx(ctx context.Context, tx *gorm.DB, input FinalizeInput, method enums.PaymentMethod, number int64) (*models.Sale, error) {
	stockRepo := s.stockRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)
	saleNo := s.alloc.FormatSaleNo(number)

	sale := &models.Sale{
		ID:            uuid.New(),
		SaleNo:        saleNo,
		SaleNumber:    number,
		CustomerID:    input.CustomerID,
		PaidAmount:    input.PaidAmount,
		PaymentMethod: method,
		PaymentRef:    input.PaymentRef,
	}

	total := decimal.Zero
	for _, line := range input.Items {
		prod, err := productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		if err := stockRepo.DecrementOnHand(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
		if err := stockRepo.RecordMovement(ctx, line.ProductID, enums.StockMovementSale, -line.Quantity, saleNo); err != nil {
			return nil, err
		}

		lineTotal := prod.SellPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		sale.Items = append(sale.Items, models.SaleLineItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: prod.ID,
			Name:      prod.Name,
			Brand:     prod.Brand,
			Unit:      prod.Unit.String(),
			Quantity:  line.Quantity,
			UnitPrice: prod.SellPrice,
			LineTotal: lineTotal,
		})
	}

	due := total.Sub(input.PaidAmount)
	if due.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paid amount exceeds sale total").
			WithDetails(map[string]any{"total": total.String(), "paid": input.PaidAmount.String()})
	}
	sale.TotalAmount = total
	sale.DueAmount = due

	if err := s.repo.WithTx(tx).Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSaleDTO(sale), nil
}

func (s *service) GetBySaleNo(ctx context.Context, saleNo string) (*SaleDTO, error) {
	sale, err := s.repo.FindBySaleNo(ctx, saleNo)
	if err != nil {
		return nil, err
	}
	return NewSaleDTO(sale), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, customerID *uuid.UUID) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, params, customerID)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Sales: NewSaleDTOs(rows)}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func validateFinalize(input FinalizeInput) (enums.PaymentMethod, error) {
	if input.CustomerID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "sale must contain at least one item")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if line.Quantity <= 0 {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, dup := seen[line.ProductID]; dup {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in sale items").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
		seen[line.ProductID] = struct{}{}
	}
	if input.PaidAmount.IsNegative() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "paid amount cannot be negative")
	}

	method := enums.PaymentMethodCash
	if input.PaymentMethod != "" {
		parsed, err := enums.ParsePaymentMethod(input.PaymentMethod)
		if err != nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		method = parsed
	}
	return method, nil
}

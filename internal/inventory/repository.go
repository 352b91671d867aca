package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

// Repository handles stock persistence. On-hand quantities only change
// through conditional updates so a row can never be driven negative, no
// matter how many writers race.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to stock operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetItem loads the stock row for a product.
func (r *Repository) GetItem(ctx context.Context, productID uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	if err := r.db.WithContext(ctx).First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return nil, err
	}
	return &item, nil
}

// DecrementOnHand subtracts quantity from the product's on-hand stock. The
// update only lands when enough stock remains; zero rows affected means
// either the product has no stock row or the remaining quantity is short.
func (r *Repository) DecrementOnHand(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ? AND quantity_on_hand >= ?", productID, quantity).
		Update("quantity_on_hand", gorm.Expr("quantity_on_hand - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("decrement stock for %s: %w", productID, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	item, err := r.GetItem(ctx, productID)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": productID,
			"available":  item.QuantityOnHand,
			"requested":  quantity,
		})
}

// IncrementOnHand adds quantity to the product's on-hand stock, creating the
// stock row on first receipt.
func (r *Repository) IncrementOnHand(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("product_id = ?", productID).
		Update("quantity_on_hand", gorm.Expr("quantity_on_hand + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("increment stock for %s: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
	}
	return nil
}

// UpsertItem creates or refreshes the stock row, keeping prices current.
func (r *Repository) UpsertItem(ctx context.Context, item *models.StockItem) error {
	if item == nil {
		return fmt.Errorf("stock item is required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity_on_hand": gorm.Expr("stock_items.quantity_on_hand + ?", item.QuantityOnHand),
				"purchase_price":   item.PurchasePrice,
				"sell_price":       item.SellPrice,
			}),
		}).
		Create(item).Error
}

// RecordMovement appends one row to the stock audit trail.
func (r *Repository) RecordMovement(ctx context.Context, productID uuid.UUID, movementType enums.StockMovementType, quantity int, reference string) error {
	movement := models.StockMovement{
		ID:        uuid.New(),
		ProductID: productID,
		Type:      movementType,
		Quantity:  quantity,
		Reference: reference,
	}
	if err := r.db.WithContext(ctx).Create(&movement).Error; err != nil {
		return fmt.Errorf("record stock movement: %w", err)
	}
	return nil
}

// ListMovements returns the audit trail for a product, newest first.
func (r *Repository) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// ListItems returns every stock row, most recently updated first.
func (r *Repository) ListItems(ctx context.Context) ([]models.StockItem, error) {
	var items []models.StockItem
	if err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListLowStock returns stock rows at or below the threshold, lowest first.
func (r *Repository) ListLowStock(ctx context.Context, threshold int) ([]models.StockItem, error) {
	var items []models.StockItem
	if err := r.db.WithContext(ctx).
		Where("quantity_on_hand < ?", threshold).
		Order("quantity_on_hand ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

func newStockDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StockItem{}))

	movements := `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  reference TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	require.NoError(t, db.Exec(movements).Error)
	return db
}

func seedStock(t *testing.T, db *gorm.DB, quantity int) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	item := models.StockItem{
		ProductID:      productID,
		QuantityOnHand: quantity,
		PurchasePrice:  decimal.NewFromInt(5),
		SellPrice:      decimal.NewFromInt(10),
	}
	require.NoError(t, db.Create(&item).Error)
	return productID
}

func TestDecrementOnHandHappyPath(t *testing.T) {
	db := newStockDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedStock(t, db, 5)

	require.NoError(t, repo.DecrementOnHand(ctx, productID, 3))

	item, err := repo.GetItem(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 2, item.QuantityOnHand)
}

func TestDecrementOnHandNeverGoesNegative(t *testing.T) {
	db := newStockDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedStock(t, db, 5)

	require.NoError(t, repo.DecrementOnHand(ctx, productID, 5))

	err := repo.DecrementOnHand(ctx, productID, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	item, getErr := repo.GetItem(ctx, productID)
	require.NoError(t, getErr)
	require.Equal(t, 0, item.QuantityOnHand, "failed decrement must not change stock")
}

func TestDecrementOnHandReportsAvailability(t *testing.T) {
	db := newStockDB(t)
	repo := NewRepository(db)
	productID := seedStock(t, db, 2)

	err := repo.DecrementOnHand(context.Background(), productID, 7)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	require.Equal(t, 2, details["available"])
	require.Equal(t, 7, details["requested"])
}

func TestDecrementOnHandUnknownProduct(t *testing.T) {
	repo := NewRepository(newStockDB(t))

	err := repo.DecrementOnHand(context.Background(), uuid.New(), 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestDecrementOnHandRejectsNonPositive(t *testing.T) {
	repo := NewRepository(newStockDB(t))

	err := repo.DecrementOnHand(context.Background(), uuid.New(), 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestIncrementOnHand(t *testing.T) {
	db := newStockDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedStock(t, db, 1)

	require.NoError(t, repo.IncrementOnHand(ctx, productID, 9))

	item, err := repo.GetItem(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 10, item.QuantityOnHand)

	err = repo.IncrementOnHand(ctx, uuid.New(), 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpsertItemCreatesThenAccumulates(t *testing.T) {
	db := newStockDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	first := &models.StockItem{
		ProductID:      productID,
		QuantityOnHand: 10,
		PurchasePrice:  decimal.NewFromInt(4),
		SellPrice:      decimal.NewFromInt(8),
	}
	require.NoError(t, repo.UpsertItem(ctx, first))

	second := &models.StockItem{
		ProductID:      productID,
		QuantityOnHand: 5,
		PurchasePrice:  decimal.NewFromInt(5),
		SellPrice:      decimal.NewFromInt(9),
	}
	require.NoError(t, repo.UpsertItem(ctx, second))

	item, err := repo.GetItem(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 15, item.QuantityOnHand)
	require.True(t, item.SellPrice.Equal(decimal.NewFromInt(9)))
}

func TestRecordAndListMovements(t *testing.T) {
	db := newStockDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedStock(t, db, 10)

	require.NoError(t, repo.RecordMovement(ctx, productID, enums.StockMovementSale, -3, "SO1001"))
	require.NoError(t, repo.RecordMovement(ctx, productID, enums.StockMovementPurchaseReceipt, 20, "po"))

	movements, err := repo.ListMovements(ctx, productID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 2)
}

func TestListLowStock(t *testing.T) {
	db := newStockDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	low := seedStock(t, db, 3)
	seedStock(t, db, 50)

	items, err := repo.ListLowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, low, items[0].ProductID)
}

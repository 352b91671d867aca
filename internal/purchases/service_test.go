package purchases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/internal/inventory"
	product "github.com/shopstack/shopstack-backend/internal/products"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

var purchasesSchema = []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  brand TEXT,
  category TEXT,
  unit TEXT NOT NULL DEFAULT 'pcs',
  purchase_price NUMERIC NOT NULL,
  sell_price NUMERIC NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS stock_items (
  product_id TEXT PRIMARY KEY,
  quantity_on_hand INTEGER NOT NULL DEFAULT 0,
  purchase_price NUMERIC NOT NULL,
  sell_price NUMERIC NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  reference TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  mobile TEXT,
  email TEXT,
  address TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS purchase_orders (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_cost NUMERIC NOT NULL,
  total_cost NUMERIC NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`}

type purchaseFixture struct {
	svc       Service
	db        *gorm.DB
	stockRepo *inventory.Repository
	vendor    uuid.UUID
	product   uuid.UUID
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	for _, stmt := range purchasesSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	stockRepo := inventory.NewRepository(db)
	svc, err := NewService(NewRepository(db), product.NewRepository(db), stockRepo, sqliteTxRunner{db: db})
	require.NoError(t, err)

	vendor := models.Vendor{ID: uuid.New(), Name: "Metro Wholesale"}
	require.NoError(t, db.Create(&vendor).Error)

	prod := models.Product{
		ID:            uuid.New(),
		Name:          "Soap",
		Unit:          enums.UnitPiece,
		PurchasePrice: decimal.NewFromInt(15),
		SellPrice:     decimal.NewFromInt(20),
	}
	require.NoError(t, db.Omit("Stock").Create(&prod).Error)
	item := models.StockItem{
		ProductID:      prod.ID,
		QuantityOnHand: 5,
		PurchasePrice:  prod.PurchasePrice,
		SellPrice:      prod.SellPrice,
	}
	require.NoError(t, db.Create(&item).Error)

	return &purchaseFixture{svc: svc, db: db, stockRepo: stockRepo, vendor: vendor.ID, product: prod.ID}
}

func TestReceiveOrderIncrementsStockAndRefreshesPrices(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	sell := decimal.NewFromInt(25)
	po, err := f.svc.ReceiveOrder(ctx, ReceiveOrderInput{
		VendorID:  f.vendor,
		ProductID: f.product,
		Quantity:  20,
		UnitCost:  decimal.NewFromInt(18),
		SellPrice: &sell,
	})
	require.NoError(t, err)
	require.True(t, po.TotalCost.Equal(decimal.NewFromInt(360)))

	item, err := f.stockRepo.GetItem(ctx, f.product)
	require.NoError(t, err)
	require.Equal(t, 25, item.QuantityOnHand)
	require.True(t, item.PurchasePrice.Equal(decimal.NewFromInt(18)))
	require.True(t, item.SellPrice.Equal(sell))

	movements, err := f.stockRepo.ListMovements(ctx, f.product, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, enums.StockMovementPurchaseReceipt, movements[0].Type)
	require.Equal(t, 20, movements[0].Quantity)
	require.Equal(t, po.ID.String(), movements[0].Reference)
}

func TestReceiveOrderUnknownProductRollsBack(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	_, err := f.svc.ReceiveOrder(ctx, ReceiveOrderInput{
		VendorID:  f.vendor,
		ProductID: uuid.New(),
		Quantity:  5,
		UnitCost:  decimal.NewFromInt(10),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	var count int64
	require.NoError(t, f.db.Model(&models.PurchaseOrder{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestReceiveOrderValidation(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	cases := []ReceiveOrderInput{
		{ProductID: f.product, Quantity: 1, UnitCost: decimal.NewFromInt(1)},
		{VendorID: f.vendor, Quantity: 1, UnitCost: decimal.NewFromInt(1)},
		{VendorID: f.vendor, ProductID: f.product, Quantity: 0, UnitCost: decimal.NewFromInt(1)},
		{VendorID: f.vendor, ProductID: f.product, Quantity: 1, UnitCost: decimal.NewFromInt(-1)},
	}
	for i, input := range cases {
		_, err := f.svc.ReceiveOrder(ctx, input)
		require.Truef(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "case %d: got %v", i, err)
	}
}

func TestReceiveOrderUnknownVendor(t *testing.T) {
	f := newPurchaseFixture(t)

	_, err := f.svc.ReceiveOrder(context.Background(), ReceiveOrderInput{
		VendorID:  uuid.New(),
		ProductID: f.product,
		Quantity:  1,
		UnitCost:  decimal.NewFromInt(1),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestVendorCRUDAndOrderListing(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateVendor(ctx, VendorInput{Name: "Agro Traders"})
	require.NoError(t, err)

	mobile := "9876543210"
	updated, err := f.svc.UpdateVendor(ctx, created.ID, VendorInput{Mobile: &mobile})
	require.NoError(t, err)
	require.Equal(t, "Agro Traders", updated.Name)
	require.Equal(t, &mobile, updated.Mobile)

	vendors, err := f.svc.ListVendors(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	require.Equal(t, "Agro Traders", vendors[0].Name, "sorted by name")

	_, err = f.svc.ReceiveOrder(ctx, ReceiveOrderInput{
		VendorID:  created.ID,
		ProductID: f.product,
		Quantity:  3,
		UnitCost:  decimal.NewFromInt(12),
	})
	require.NoError(t, err)

	orders, err := f.svc.ListOrders(ctx, &created.ID, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 3, orders[0].Quantity)

	all, err := f.svc.ListOrders(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

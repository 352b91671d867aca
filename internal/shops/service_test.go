package shops

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

func newShopDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS shops (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT NOT NULL,
  phone TEXT NOT NULL,
  tax_id TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`).Error)
	return db
}

func newShopService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestCreateAndGetShop(t *testing.T) {
	svc := newShopService(t, newShopDB(t))
	ctx := context.Background()

	gstin := "22AAAAA0000A1Z5"
	created, err := svc.Create(ctx, CreateInput{
		Name:    "  Sharma General Store ",
		Address: "12 Market Road",
		Phone:   "9876543210",
		TaxID:   &gstin,
	})
	require.NoError(t, err)
	require.Equal(t, "Sharma General Store", created.Name)
	require.NotNil(t, created.TaxID)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "12 Market Road", got.Address)
}

func TestCreateShopValidation(t *testing.T) {
	svc := newShopService(t, newShopDB(t))
	ctx := context.Background()

	cases := []CreateInput{
		{Address: "a", Phone: "1"},
		{Name: "n", Phone: "1"},
		{Name: "n", Address: "a"},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
}

func TestUpdateShop(t *testing.T) {
	svc := newShopService(t, newShopDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Old Name", Address: "A", Phone: "1"})
	require.NoError(t, err)

	name := "New Name"
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, "A", updated.Address)

	empty := "  "
	_, err = svc.Update(ctx, created.ID, UpdateInput{Name: &empty})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetMissingShop(t *testing.T) {
	svc := newShopService(t, newShopDB(t))
	_, err := svc.GetByID(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListShops(t *testing.T) {
	svc := newShopService(t, newShopDB(t))
	ctx := context.Background()

	for _, name := range []string{"First", "Second"} {
		_, err := svc.Create(ctx, CreateInput{Name: name, Address: "A", Phone: "1"})
		require.NoError(t, err)
	}
	shops, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 2)
}

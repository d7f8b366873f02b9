package handler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/dbtest"
	"storefront-backend/internal/database/models"
)

func TestReserveAndRelease(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedProduct(t, db, "Rice", 50, 10)

	inv, err := ReserveStock(db, p.ID, 4, OrderReference("ORD-1"))
	require.NoError(t, err)
	assert.Equal(t, int32(6), inv.Quantity)
	assert.Equal(t, int32(4), inv.ReservedQuantity)

	inv, err = ReleaseReservedStock(db, p.ID, 3, OrderReference("ORD-1"))
	require.NoError(t, err)
	assert.Equal(t, int32(9), inv.Quantity)
	assert.Equal(t, int32(1), inv.ReservedQuantity)

	var movements []models.StockMovement
	require.NoError(t, db.Order("id").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, models.MovementReserve, movements[0].MovementType)
	assert.Equal(t, models.MovementRelease, movements[1].MovementType)
	require.NotNil(t, movements[0].ReferenceID)
	assert.Equal(t, "ORD-1", *movements[0].ReferenceID)
}

func TestReserveStock_Insufficient(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedProduct(t, db, "Wheat", 40, 3)

	_, err := ReserveStock(db, p.ID, 5, ManualReference(""))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
	assert.Contains(t, err.Error(), "Wheat")
	assert.Contains(t, err.Error(), "Available: 3")

	inv := dbtest.Inventory(t, db, p.ID)
	assert.Equal(t, int32(3), inv.Quantity)
	assert.Zero(t, inv.ReservedQuantity)
	assert.Zero(t, dbtest.Count(t, db, &models.StockMovement{}))
}

func TestReserveStock_NoInventoryRow(t *testing.T) {
	db := dbtest.Open(t)
	product := models.Product{Name: "Orphan", IsActive: true}
	require.NoError(t, db.Create(&product).Error)

	_, err := ReserveStock(db, product.ID, 1, ManualReference(""))
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeInventoryNotFound))
	assert.Zero(t, dbtest.Count(t, db, &models.Inventory{}))
}

func TestReleaseReservedStock_MoreThanReserved(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedProduct(t, db, "Oats", 30, 10)

	_, err := ReserveStock(db, p.ID, 2, ManualReference(""))
	require.NoError(t, err)

	_, err = ReleaseReservedStock(db, p.ID, 3, ManualReference(""))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestShipAndRestock(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedProduct(t, db, "Millet", 20, 10)

	_, err := ReserveStock(db, p.ID, 4, ManualReference(""))
	require.NoError(t, err)

	inv, err := ShipReservedStock(db, p.ID, 4, ManualReference(""))
	require.NoError(t, err)
	assert.Equal(t, int32(6), inv.Quantity)
	assert.Zero(t, inv.ReservedQuantity)

	inv, err = RestockStock(db, p.ID, 4, ManualReference("returned"))
	require.NoError(t, err)
	assert.Equal(t, int32(10), inv.Quantity)
}

func TestReserveStock_RejectsNonPositive(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedProduct(t, db, "Barley", 20, 10)

	_, err := ReserveStock(db, p.ID, 0, ManualReference(""))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	_, err = ReserveStock(db, p.ID, -2, ManualReference(""))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestReserveStock_ConcurrentCallersNeverOversell(t *testing.T) {
	db := dbtest.Open(t)
	p := dbtest.SeedProduct(t, db, "Flour", 60, 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.Transaction(func(tx *gorm.DB) error {
				_, err := ReserveStock(tx, p.ID, 6, ManualReference(""))
				return err
			})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
		}
	}
	assert.Equal(t, 1, failures)

	inv := dbtest.Inventory(t, db, p.ID)
	assert.Equal(t, int32(4), inv.Quantity)
	assert.Equal(t, int32(6), inv.ReservedQuantity)
}

func TestInventoryHandler_LowStock(t *testing.T) {
	db := dbtest.Open(t)
	h := NewInventoryHandler(db, cache.Noop{})
	low := dbtest.SeedProduct(t, db, "Low", 10, 5)
	dbtest.SeedProduct(t, db, "Plenty", 10, 50)

	items, err := h.GetLowStockItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ProductID)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Low", items[0].Product.Name)
}

func TestInventoryHandler_UpdateWritesAdjustment(t *testing.T) {
	db := dbtest.Open(t)
	h := NewInventoryHandler(db, cache.Noop{})
	p := dbtest.SeedProduct(t, db, "Sugar", 10, 8)

	qty := int32(12)
	inv, err := h.UpdateInventory(context.Background(), p.ID, UpdateInventoryRequest{Quantity: &qty, Notes: "count"})
	require.NoError(t, err)
	assert.Equal(t, int32(12), inv.Quantity)

	var movement models.StockMovement
	require.NoError(t, db.First(&movement).Error)
	assert.Equal(t, models.MovementAdjust, movement.MovementType)
	assert.Equal(t, int32(4), movement.Quantity)

	negative := int32(-1)
	_, err = h.UpdateInventory(context.Background(), p.ID, UpdateInventoryRequest{Quantity: &negative})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestInventoryHandler_CreateAndDelete(t *testing.T) {
	db := dbtest.Open(t)
	h := NewInventoryHandler(db, cache.Noop{})
	ctx := context.Background()

	product := models.Product{Name: "Salt", IsActive: true}
	require.NoError(t, db.Create(&product).Error)

	_, err := h.CreateInventory(ctx, CreateInventoryRequest{ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)

	_, err = h.CreateInventory(ctx, CreateInventoryRequest{ProductID: product.ID, Quantity: 5})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = h.ReserveStock(ctx, product.ID, StockRequest{Quantity: 1})
	require.NoError(t, err)
	assert.True(t, apperr.IsKind(h.DeleteInventory(ctx, product.ID), apperr.KindConflict))

	_, err = h.ReleaseStock(ctx, product.ID, StockRequest{Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, h.DeleteInventory(ctx, product.ID))

	_, err = h.GetInventory(ctx, product.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInventoryNotFound))
}

func TestInventoryHandler_ListPaginates(t *testing.T) {
	db := dbtest.Open(t)
	h := NewInventoryHandler(db, cache.Noop{})
	for _, name := range []string{"a", "b", "c"} {
		dbtest.SeedProduct(t, db, name, 1, 1)
	}

	items, page, err := h.ListInventory(context.Background(), database.NewPageRequest(2, 2))
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(2), page.Pages)
}

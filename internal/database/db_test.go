package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/database/models"
)

func TestNewConnection_RequiresDSN(t *testing.T) {
	_, err := NewConnection(DriverPostgres, "")
	assert.Error(t, err)
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection("oracle", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrate_SQLiteRoundTrip(t *testing.T) {
	db, err := NewConnection(DriverSQLite, "file:migrate_round_trip?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	product := models.Product{Name: "Toor Dal", Price: decimal.RequireFromString("129.50"), IsActive: true}
	require.NoError(t, db.Create(&product).Error)

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("129.50")), "price %s", got.Price)
}

func TestMigrate_CouponUsageUniquePerOrder(t *testing.T) {
	db, err := NewConnection(DriverSQLite, "file:migrate_coupon_usage?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	first := models.CouponUsage{CouponID: 1, OrderID: 1, DiscountApplied: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&first).Error)

	dup := models.CouponUsage{CouponID: 1, OrderID: 1, DiscountApplied: decimal.NewFromInt(10)}
	assert.Error(t, db.Create(&dup).Error)
}

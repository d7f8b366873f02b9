// Package dbtest opens migrated in-memory databases for package tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/database"
	"storefront-backend/internal/database/models"
)

var seq atomic.Int64

// Open returns a fresh sqlite database, closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.NewConnection(database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedProduct creates an active product priced at price with qty units on hand.
func SeedProduct(t testing.TB, db *gorm.DB, name string, price int64, qty int32) models.Product {
	t.Helper()

	product := models.Product{
		Name:     name,
		Price:    decimal.NewFromInt(price),
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	inv := models.Inventory{
		ProductID:     product.ID,
		Quantity:      qty,
		LowStockAlert: 5,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return product
}

func Inventory(t testing.TB, db *gorm.DB, productID int64) models.Inventory {
	t.Helper()

	var inv models.Inventory
	if err := db.Where("product_id = ?", productID).First(&inv).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	return inv
}

func Count(t testing.TB, db *gorm.DB, model any) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

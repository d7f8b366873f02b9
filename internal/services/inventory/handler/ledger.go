package handler

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database/models"
)

// Ledger operations run on the caller's transaction handle so they commit or
// roll back together with the rest of the caller's writes.

type Reference struct {
	Type  models.ReferenceType
	ID    string
	Notes string
}

func OrderReference(orderNumber string) Reference {
	return Reference{Type: models.ReferenceOrder, ID: orderNumber}
}

func ManualReference(notes string) Reference {
	return Reference{Type: models.ReferenceManual, Notes: notes}
}

// CheckAvailability fails with InsufficientStock when fewer than qty units are on hand.
func CheckAvailability(tx *gorm.DB, productID int64, qty int32) (*models.Inventory, error) {
	inv, err := loadInventory(tx, productID)
	if err != nil {
		return nil, err
	}
	if inv.Quantity < qty {
		return nil, apperr.InsufficientStock(productID, productName(tx, productID), inv.Quantity, qty)
	}
	return inv, nil
}

// ReserveStock moves qty units from quantity to reservedQuantity. The
// availability check is part of the UPDATE so concurrent reservations cannot
// both succeed against the same units.
func ReserveStock(tx *gorm.DB, productID int64, qty int32, ref Reference) (*models.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be greater than 0")
	}

	res := tx.Model(&models.Inventory{}).
		Where("product_id = ? AND quantity >= ?", productID, qty).
		Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity - ?", qty),
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", qty),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, apperr.Internal("failed to reserve stock", res.Error)
	}
	if res.RowsAffected == 0 {
		inv, err := loadInventory(tx, productID)
		if err != nil {
			return nil, err
		}
		return nil, apperr.InsufficientStock(productID, productName(tx, productID), inv.Quantity, qty)
	}

	return recordMovement(tx, productID, models.MovementReserve, qty, ref)
}

// ReleaseReservedStock is the inverse of ReserveStock.
func ReleaseReservedStock(tx *gorm.DB, productID int64, qty int32, ref Reference) (*models.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be greater than 0")
	}

	res := tx.Model(&models.Inventory{}).
		Where("product_id = ? AND reserved_quantity >= ?", productID, qty).
		Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity + ?", qty),
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, apperr.Internal("failed to release stock", res.Error)
	}
	if res.RowsAffected == 0 {
		inv, err := loadInventory(tx, productID)
		if err != nil {
			return nil, err
		}
		return nil, apperr.Conflict(apperr.CodeInsufficientStock,
			"Insufficient reserved stock. Reserved: %d, Requested: %d", inv.ReservedQuantity, qty)
	}

	return recordMovement(tx, productID, models.MovementRelease, qty, ref)
}

// ShipReservedStock drops qty units from reservedQuantity once they leave the warehouse.
func ShipReservedStock(tx *gorm.DB, productID int64, qty int32, ref Reference) (*models.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be greater than 0")
	}

	res := tx.Model(&models.Inventory{}).
		Where("product_id = ? AND reserved_quantity >= ?", productID, qty).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, apperr.Internal("failed to ship stock", res.Error)
	}
	if res.RowsAffected == 0 {
		inv, err := loadInventory(tx, productID)
		if err != nil {
			return nil, err
		}
		return nil, apperr.Conflict(apperr.CodeInsufficientStock,
			"Insufficient reserved stock. Reserved: %d, Requested: %d", inv.ReservedQuantity, qty)
	}

	return recordMovement(tx, productID, models.MovementShip, qty, ref)
}

// RestockStock returns qty units to quantity, e.g. goods coming back after shipment.
func RestockStock(tx *gorm.DB, productID int64, qty int32, ref Reference) (*models.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be greater than 0")
	}

	res := tx.Model(&models.Inventory{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, apperr.Internal("failed to restock", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, inventoryNotFound(productID)
	}

	return recordMovement(tx, productID, models.MovementRestock, qty, ref)
}

func recordMovement(tx *gorm.DB, productID int64, kind models.MovementType, qty int32, ref Reference) (*models.Inventory, error) {
	movement := models.StockMovement{
		ProductID:     productID,
		MovementType:  kind,
		Quantity:      qty,
		ReferenceType: ref.Type,
		CreatedAt:     time.Now(),
	}
	if movement.ReferenceType == "" {
		movement.ReferenceType = models.ReferenceManual
	}
	if ref.ID != "" {
		movement.ReferenceID = &ref.ID
	}
	if ref.Notes != "" {
		movement.Notes = &ref.Notes
	}

	if err := tx.Create(&movement).Error; err != nil {
		return nil, apperr.Internal("failed to create stock movement record", err)
	}

	return loadInventory(tx, productID)
}

func loadInventory(tx *gorm.DB, productID int64) (*models.Inventory, error) {
	var inv models.Inventory
	if err := tx.Where("product_id = ?", productID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventoryNotFound(productID)
		}
		return nil, apperr.Internal("database error", err)
	}
	return &inv, nil
}

func inventoryNotFound(productID int64) error {
	return apperr.NotFound(apperr.CodeInventoryNotFound, "Inventory not found for product %d", productID)
}

func productName(tx *gorm.DB, productID int64) string {
	var name string
	if err := tx.Model(&models.Product{}).Select("name").Where("id = ?", productID).Scan(&name).Error; err != nil || name == "" {
		return fmt.Sprintf("product %d", productID)
	}
	return name
}

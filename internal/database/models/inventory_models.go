package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	ParentID  *int64    `gorm:"index" json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CategoryID  *int64          `gorm:"index" json:"categoryId"`
	IsActive    bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Category  *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Inventory *Inventory `gorm:"foreignKey:ProductID" json:"inventory,omitempty"`
}

type Grain struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Unit        string          `gorm:"size:50;not null;default:kg" json:"unit"`
	IsActive    bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Inventory is one-to-one with Product.
type Inventory struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID        int64     `gorm:"uniqueIndex;not null" json:"productId"`
	Quantity         int32     `gorm:"not null;default:0" json:"quantity"`
	ReservedQuantity int32     `gorm:"not null;default:0" json:"reservedQuantity"`
	LowStockAlert    int32     `gorm:"not null;default:10" json:"lowStockAlert"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

type MovementType string

const (
	MovementReserve MovementType = "RESERVE"
	MovementRelease MovementType = "RELEASE"
	MovementShip    MovementType = "SHIP"
	MovementRestock MovementType = "RESTOCK"
	MovementAdjust  MovementType = "ADJUST"
)

type ReferenceType string

const (
	ReferenceOrder  ReferenceType = "ORDER"
	ReferenceManual ReferenceType = "MANUAL"
)

type StockMovement struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64         `gorm:"index;not null" json:"productId"`
	MovementType  MovementType  `gorm:"size:20;not null" json:"movementType"`
	Quantity      int32         `gorm:"not null" json:"quantity"`
	ReferenceType ReferenceType `gorm:"size:20;not null" json:"referenceType"`
	ReferenceID   *string       `gorm:"size:100" json:"referenceId,omitempty"`
	Notes         *string       `gorm:"size:255" json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponDiscountCode   CouponType = "DISCOUNT_CODE"
	CouponAdditionalItem CouponType = "ADDITIONAL_ITEM"
)

// Coupon is the storage row for both coupon variants. Only the columns of
// its own variant are populated; see the coupon handler for the typed view.
type Coupon struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Type        CouponType `gorm:"size:20;index;not null"`
	Name        string     `gorm:"size:255;not null"`
	Description *string    `gorm:"type:text"`
	IsActive    bool       `gorm:"not null;default:true"`

	// Stored upper-cased so the unique index is case-insensitive.
	Code                      *string             `gorm:"size:64;uniqueIndex"`
	DiscountAmount            decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	MinOrderAmountForDiscount decimal.NullDecimal `gorm:"type:numeric(12,2)"`

	ProductID      *int64              `gorm:"index"`
	MinOrderAmount decimal.NullDecimal `gorm:"type:numeric(12,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

type CouponUsage struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID        int64           `gorm:"uniqueIndex:idx_coupon_usage_coupon_order;not null" json:"couponId"`
	OrderID         int64           `gorm:"uniqueIndex:idx_coupon_usage_coupon_order;index;not null" json:"orderId"`
	UserID          *int64          `json:"userId,omitempty"`
	DiscountApplied decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discountApplied"`
	CreatedAt       time.Time       `json:"createdAt"`
}

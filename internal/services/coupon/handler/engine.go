package handler

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database/models"
)

// Result is the outcome of a successful validation. Exactly one of Discount
// (DiscountCode) or FreeProduct (AdditionalItem) is meaningful.
type Result struct {
	Coupon      *models.Coupon
	Terms       Terms
	Discount    decimal.Decimal
	FreeProduct *models.Product
}

func (r *Result) Message() string {
	if r.FreeProduct != nil {
		return "Free item " + r.FreeProduct.Name + " added to your order"
	}
	return "Coupon applied successfully"
}

// ValidateWith checks code against orderAmount using tx. It has no side effects.
func ValidateWith(tx *gorm.DB, code string, orderAmount decimal.Decimal) (*Result, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, apperr.Validation("coupon code is required")
	}

	var coupon models.Coupon
	if err := tx.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeCouponNotFound, "Coupon code not found")
		}
		return nil, apperr.Internal("database error", err)
	}
	return evaluate(tx, &coupon, orderAmount)
}

// ValidateByIDWith is ValidateWith for coupons redeemed by id, such as
// additional-item coupons without a code.
func ValidateByIDWith(tx *gorm.DB, couponID int64, orderAmount decimal.Decimal) (*Result, error) {
	coupon, err := loadCoupon(tx, couponID)
	if err != nil {
		return nil, err
	}
	return evaluate(tx, coupon, orderAmount)
}

func evaluate(tx *gorm.DB, coupon *models.Coupon, orderAmount decimal.Decimal) (*Result, error) {
	if orderAmount.IsNegative() {
		return nil, apperr.Validation("orderAmount cannot be negative")
	}
	if !coupon.IsActive {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeCouponInactive, "This coupon is no longer active")
	}

	terms, err := TermsOf(coupon)
	if err != nil {
		return nil, err
	}

	switch t := terms.(type) {
	case DiscountCode:
		if orderAmount.LessThan(t.MinOrderAmount) {
			return nil, minimumNotMet(t.MinOrderAmount)
		}
		return &Result{Coupon: coupon, Terms: t, Discount: t.Discount(orderAmount)}, nil

	case AdditionalItem:
		if orderAmount.LessThan(t.MinOrderAmount) {
			return nil, minimumNotMet(t.MinOrderAmount)
		}
		var product models.Product
		if err := tx.Where("id = ? AND is_active = ?", t.ProductID, true).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.New(apperr.KindValidation, apperr.CodeProductNotAvailable,
					"Free product is no longer available")
			}
			return nil, apperr.Internal("database error", err)
		}
		return &Result{Coupon: coupon, Terms: t, Discount: decimal.Zero, FreeProduct: &product}, nil
	}

	return nil, apperr.Internal("unknown coupon terms", nil)
}

// RecordUsage writes the CouponUsage row for (coupon, order). A second usage
// for the same pair fails with CouponAlreadyApplied.
func RecordUsage(tx *gorm.DB, couponID, orderID int64, userID *int64, discount decimal.Decimal) (*models.CouponUsage, error) {
	var existing int64
	if err := tx.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND order_id = ?", couponID, orderID).
		Count(&existing).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	if existing > 0 {
		return nil, alreadyApplied()
	}

	usage := models.CouponUsage{
		CouponID:        couponID,
		OrderID:         orderID,
		UserID:          userID,
		DiscountApplied: discount,
	}
	if err := tx.Create(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, alreadyApplied()
		}
		return nil, apperr.Internal("failed to record coupon usage", err)
	}
	return &usage, nil
}

func minimumNotMet(min decimal.Decimal) error {
	return apperr.New(apperr.KindValidation, apperr.CodeMinimumOrderNotMet,
		"Minimum order amount of "+min.StringFixed(2)+" required for this coupon")
}

func alreadyApplied() error {
	return apperr.Conflict(apperr.CodeCouponAlreadyApplied, "Coupon already applied to this order")
}

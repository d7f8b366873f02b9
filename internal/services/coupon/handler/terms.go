package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database/models"
)

// Terms is the variant-specific part of a coupon. It is either DiscountCode
// or AdditionalItem; the zero value of neither is valid, use the constructors.
type Terms interface {
	Type() models.CouponType
	applyTo(c *models.Coupon)
}

type DiscountCode struct {
	Code           string
	DiscountAmount decimal.Decimal
	MinOrderAmount decimal.Decimal
}

// AdditionalItem grants one unit of ProductID for free. Code is optional;
// without one the coupon is redeemed by id.
type AdditionalItem struct {
	Code           string
	ProductID      int64
	MinOrderAmount decimal.Decimal
}

func NewDiscountCode(code string, discountAmount, minOrderAmount decimal.Decimal) (DiscountCode, error) {
	code = NormalizeCode(code)
	if code == "" {
		return DiscountCode{}, apperr.Validation("code is required for discount_code coupons")
	}
	if !discountAmount.IsPositive() {
		return DiscountCode{}, apperr.Validation("discountAmount must be greater than 0")
	}
	if minOrderAmount.IsNegative() {
		return DiscountCode{}, apperr.Validation("minOrderAmountForDiscount cannot be negative")
	}
	return DiscountCode{Code: code, DiscountAmount: discountAmount, MinOrderAmount: minOrderAmount}, nil
}

func NewAdditionalItem(code string, productID int64, minOrderAmount decimal.Decimal) (AdditionalItem, error) {
	if productID <= 0 {
		return AdditionalItem{}, apperr.Validation("productId is required for additional_item coupons")
	}
	if minOrderAmount.IsNegative() {
		return AdditionalItem{}, apperr.Validation("minOrderAmount cannot be negative")
	}
	return AdditionalItem{Code: NormalizeCode(code), ProductID: productID, MinOrderAmount: minOrderAmount}, nil
}

func (DiscountCode) Type() models.CouponType   { return models.CouponDiscountCode }
func (AdditionalItem) Type() models.CouponType { return models.CouponAdditionalItem }

// Discount is min(DiscountAmount, orderAmount), so an order is never discounted below zero.
func (d DiscountCode) Discount(orderAmount decimal.Decimal) decimal.Decimal {
	if orderAmount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(d.DiscountAmount, orderAmount)
}

func (d DiscountCode) applyTo(c *models.Coupon) {
	code := d.Code
	c.Type = models.CouponDiscountCode
	c.Code = &code
	c.DiscountAmount = decimal.NewNullDecimal(d.DiscountAmount)
	c.MinOrderAmountForDiscount = decimal.NewNullDecimal(d.MinOrderAmount)
	c.ProductID = nil
	c.MinOrderAmount = decimal.NullDecimal{}
}

func (a AdditionalItem) applyTo(c *models.Coupon) {
	productID := a.ProductID
	c.Type = models.CouponAdditionalItem
	c.ProductID = &productID
	c.MinOrderAmount = decimal.NewNullDecimal(a.MinOrderAmount)
	c.Code = nil
	if a.Code != "" {
		code := a.Code
		c.Code = &code
	}
	c.DiscountAmount = decimal.NullDecimal{}
	c.MinOrderAmountForDiscount = decimal.NullDecimal{}
}

// TermsOf decodes the variant columns of a stored coupon.
func TermsOf(c *models.Coupon) (Terms, error) {
	switch c.Type {
	case models.CouponDiscountCode:
		if c.Code == nil || !c.DiscountAmount.Valid {
			return nil, apperr.Internal("corrupt coupon", nil)
		}
		return DiscountCode{
			Code:           *c.Code,
			DiscountAmount: c.DiscountAmount.Decimal,
			MinOrderAmount: c.MinOrderAmountForDiscount.Decimal,
		}, nil
	case models.CouponAdditionalItem:
		if c.ProductID == nil {
			return nil, apperr.Internal("corrupt coupon", nil)
		}
		var code string
		if c.Code != nil {
			code = *c.Code
		}
		return AdditionalItem{
			Code:           code,
			ProductID:      *c.ProductID,
			MinOrderAmount: c.MinOrderAmount.Decimal,
		}, nil
	}
	return nil, apperr.Internal("unknown coupon type "+string(c.Type), nil)
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseCouponType accepts both the stored upper-case form and the lower-case
// form used by storefront clients.
func ParseCouponType(s string) (models.CouponType, error) {
	switch t := models.CouponType(strings.ToUpper(strings.TrimSpace(s))); t {
	case models.CouponDiscountCode, models.CouponAdditionalItem:
		return t, nil
	}
	return "", apperr.Validation("coupon type must be either additional_item or discount_code")
}

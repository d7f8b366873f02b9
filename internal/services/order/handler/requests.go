package handler

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database/models"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

type CustomerInfo struct {
	FullName   string  `json:"fullName"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email"`
	Address    string  `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    string  `json:"country"`
}

type CartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
	// UnitPrice is optional. When sent it must match the catalog price.
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

type Pricing struct {
	ItemTotal   decimal.Decimal `json:"itemTotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Discount    decimal.Decimal `json:"discount"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

type CreateOrderRequest struct {
	CustomerInfo  CustomerInfo         `json:"customerInfo"`
	CartItems     []CartItem           `json:"cartItems"`
	Pricing       Pricing              `json:"pricing"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Notes         *string              `json:"notes"`
	CouponCode    *string              `json:"couponCode"`
	CouponID      *int64               `json:"couponId"`
	UserID        *int64               `json:"userId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

// validate checks everything that does not need the database.
func (r *CreateOrderRequest) validate() error {
	r.CustomerInfo.FullName = strings.TrimSpace(r.CustomerInfo.FullName)
	r.CustomerInfo.Phone = strings.TrimSpace(r.CustomerInfo.Phone)

	if r.CustomerInfo.FullName == "" {
		return apperr.Validation("Customer name is required")
	}
	if !phonePattern.MatchString(r.CustomerInfo.Phone) {
		return apperr.Validation("Valid 10-digit phone number is required")
	}
	if len(r.CartItems) == 0 {
		return apperr.Validation("At least one cart item is required")
	}
	for i, item := range r.CartItems {
		if item.ProductID <= 0 {
			return apperr.Validation("cartItems[%d]: productId is required", i)
		}
		if item.Quantity <= 0 {
			return apperr.Validation("cartItems[%d]: quantity must be greater than 0", i)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return apperr.Validation("cartItems[%d]: unitPrice cannot be negative", i)
		}
		if item.UnitPrice != nil && !isCents(*item.UnitPrice) {
			return apperr.Validation("cartItems[%d]: unitPrice has more than 2 decimal places", i)
		}
	}

	p := r.Pricing
	if p.DeliveryFee.IsNegative() || p.Discount.IsNegative() || p.ItemTotal.IsNegative() {
		return apperr.Validation("Pricing amounts cannot be negative")
	}
	for _, amount := range []decimal.Decimal{p.ItemTotal, p.DeliveryFee, p.Discount, p.GrandTotal} {
		if !isCents(amount) {
			return apperr.Validation("Pricing amount %s has more than 2 decimal places", amount.String())
		}
	}
	if !p.GrandTotal.IsPositive() {
		return apperr.Validation("Grand total must be greater than 0")
	}
	if !p.ItemTotal.Add(p.DeliveryFee).Sub(p.Discount).Equal(p.GrandTotal) {
		return apperr.Validation("Grand total %s does not equal itemTotal + deliveryFee - discount",
			p.GrandTotal.StringFixed(2))
	}

	if r.PaymentMethod == "" {
		r.PaymentMethod = models.PaymentCashOnDelivery
	}
	if !r.PaymentMethod.Valid() {
		return apperr.Validation("invalid payment method %q", r.PaymentMethod)
	}
	if r.CouponCode != nil && strings.TrimSpace(*r.CouponCode) == "" {
		r.CouponCode = nil
	}
	if r.CouponCode != nil && r.CouponID != nil {
		return apperr.Validation("send either couponCode or couponId, not both")
	}
	if r.CouponCode == nil && r.CouponID == nil && !p.Discount.IsZero() {
		return apperr.Validation("A discount requires a coupon")
	}
	return nil
}

// isCents reports whether d fits a numeric(12,2) column without rounding.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func (r *CreateOrderRequest) newOrder() models.Order {
	c := r.CustomerInfo
	country := strings.TrimSpace(c.Country)
	if country == "" {
		country = "India"
	}
	return models.Order{
		UserID:        r.UserID,
		CustomerName:  c.FullName,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       strings.TrimSpace(c.Address),
		City:          c.City,
		State:         c.State,
		PostalCode:    c.PostalCode,
		Country:       country,
		ItemTotal:     r.Pricing.ItemTotal,
		DeliveryFee:   r.Pricing.DeliveryFee,
		Discount:      r.Pricing.Discount,
		GrandTotal:    r.Pricing.GrandTotal,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
}

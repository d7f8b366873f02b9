package handler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/dbtest"
	"storefront-backend/internal/database/models"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func str(s string) *string { return &s }

func seedOrder(t *testing.T, db *gorm.DB, itemTotal int64) models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:       "ORD-TEST-" + uuid.NewString()[:8],
		CustomerName:      "Asha",
		Phone:             "9876543210",
		Country:           "India",
		ItemTotal:         decimal.NewFromInt(itemTotal),
		DeliveryFee:       decimal.Zero,
		Discount:          decimal.Zero,
		GrandTotal:        decimal.NewFromInt(itemTotal),
		Status:            models.OrderPending,
		PaymentStatus:     models.PaymentPending,
		PaymentMethod:     models.PaymentCashOnDelivery,
		EstimatedDelivery: time.Now().AddDate(0, 0, 5),
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func newDiscountCoupon(t *testing.T, h *CouponHandler, code string, amount, minOrder int64) *CouponView {
	t.Helper()
	v, err := h.CreateCoupon(context.Background(), CouponRequest{
		Type:                      "discount_code",
		Name:                      str("Festive"),
		Code:                      str(code),
		DiscountAmount:            dec(amount),
		MinOrderAmountForDiscount: dec(minOrder),
	})
	require.NoError(t, err)
	return v
}

func TestDiscountCode_Discount(t *testing.T) {
	dc, err := NewDiscountCode("save50", decimal.NewFromInt(50), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "SAVE50", dc.Code)

	cases := []struct {
		amount int64
		want   int64
	}{
		{amount: 200, want: 50},
		{amount: 50, want: 50},
		{amount: 30, want: 30},
		{amount: 0, want: 0},
	}
	for _, tc := range cases {
		got := dc.Discount(decimal.NewFromInt(tc.amount))
		assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "amount %d: got %s", tc.amount, got)
	}
}

func TestTermsConstructors_RejectMissingFields(t *testing.T) {
	_, err := NewDiscountCode("  ", decimal.NewFromInt(10), decimal.Zero)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = NewDiscountCode("X", decimal.Zero, decimal.Zero)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = NewAdditionalItem("", 0, decimal.NewFromInt(100))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = NewAdditionalItem("", 1, decimal.NewFromInt(-1))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateCoupon_DuplicateCodeIsCaseInsensitive(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)

	v := newDiscountCoupon(t, h, "Diwali", 100, 500)
	require.NotNil(t, v.Code)
	assert.Equal(t, "DIWALI", *v.Code)
	assert.Nil(t, v.ProductID)

	_, err := h.CreateCoupon(context.Background(), CouponRequest{
		Type:           "DISCOUNT_CODE",
		Name:           str("Copy"),
		Code:           str("diwali"),
		DiscountAmount: dec(10),
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeDuplicateCouponCode))
}

func TestCreateCoupon_AdditionalItemNeedsActiveProduct(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	p := dbtest.SeedProduct(t, db, "Ghee", 300, 5)
	v, err := h.CreateCoupon(ctx, CouponRequest{
		Type:           "additional_item",
		Name:           str("Free ghee"),
		ProductID:      &p.ID,
		MinOrderAmount: dec(1000),
	})
	require.NoError(t, err)
	require.NotNil(t, v.ProductName)
	assert.Equal(t, "Ghee", *v.ProductName)
	assert.Nil(t, v.Code)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)
	_, err = h.CreateCoupon(ctx, CouponRequest{
		Type:      "additional_item",
		Name:      str("Another"),
		ProductID: &p.ID,
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeProductNotAvailable))

	_, err = h.CreateCoupon(ctx, CouponRequest{Type: "additional_item", Name: str("Missing")})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestValidate(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	newDiscountCoupon(t, h, "SAVE100", 100, 500)

	res, err := h.Validate(ctx, ValidateRequest{Code: "save100", OrderAmount: decimal.NewFromInt(800)})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.True(t, res.DiscountAmount.Equal(decimal.NewFromInt(100)))

	_, err = h.Validate(ctx, ValidateRequest{Code: "SAVE100", OrderAmount: decimal.NewFromInt(499)})
	assert.True(t, apperr.HasCode(err, apperr.CodeMinimumOrderNotMet))

	_, err = h.Validate(ctx, ValidateRequest{Code: "NOPE", OrderAmount: decimal.NewFromInt(800)})
	assert.True(t, apperr.HasCode(err, apperr.CodeCouponNotFound))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, db.Model(&models.Coupon{}).Where("code = ?", "SAVE100").Update("is_active", false).Error)
	_, err = h.Validate(ctx, ValidateRequest{Code: "SAVE100", OrderAmount: decimal.NewFromInt(800)})
	assert.True(t, apperr.HasCode(err, apperr.CodeCouponInactive))

	assert.Zero(t, dbtest.Count(t, db, &models.CouponUsage{}))
}

func TestCreateCoupon_InactiveCannotBeRedeemed(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	inactive := false
	v, err := h.CreateCoupon(ctx, CouponRequest{
		Type:                      "discount_code",
		Name:                      str("Paused"),
		Code:                      str("PAUSED10"),
		DiscountAmount:            dec(10),
		MinOrderAmountForDiscount: dec(0),
		IsActive:                  &inactive,
	})
	require.NoError(t, err)
	assert.False(t, v.IsActive)

	var stored models.Coupon
	require.NoError(t, db.First(&stored, v.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = h.Validate(ctx, ValidateRequest{Code: "paused10", OrderAmount: decimal.NewFromInt(100)})
	assert.True(t, apperr.HasCode(err, apperr.CodeCouponInactive))
}

func TestValidate_AdditionalItem(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	p := dbtest.SeedProduct(t, db, "Jaggery", 80, 5)
	require.NoError(t, db.Create(&models.Coupon{
		Type:           models.CouponAdditionalItem,
		Name:           "Free jaggery",
		IsActive:       true,
		Code:           str("SWEET"),
		ProductID:      &p.ID,
		MinOrderAmount: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
	}).Error)

	res, err := h.Validate(ctx, ValidateRequest{Code: "sweet", OrderAmount: decimal.NewFromInt(1500)})
	require.NoError(t, err)
	require.NotNil(t, res.FreeProduct)
	assert.Equal(t, p.ID, res.FreeProduct.ID)
	assert.True(t, res.DiscountAmount.IsZero())

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)
	_, err = h.Validate(ctx, ValidateRequest{Code: "SWEET", OrderAmount: decimal.NewFromInt(1500)})
	assert.True(t, apperr.HasCode(err, apperr.CodeProductNotAvailable))
}

func TestApply_SecondCallConflicts(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	c := newDiscountCoupon(t, h, "TWICE", 50, 0)
	order := seedOrder(t, db, 30)

	usage, err := h.Apply(ctx, ApplyRequest{CouponID: c.ID, OrderID: order.ID})
	require.NoError(t, err)
	assert.True(t, usage.DiscountApplied.Equal(decimal.NewFromInt(30)))

	_, err = h.Apply(ctx, ApplyRequest{CouponID: c.ID, OrderID: order.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeCouponAlreadyApplied))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Equal(t, int64(1), dbtest.Count(t, db, &models.CouponUsage{}))

	_, err = h.Apply(ctx, ApplyRequest{CouponID: c.ID + 100, OrderID: order.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeCouponNotFound))
}

func TestDeleteCoupon(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	used := newDiscountCoupon(t, h, "USED", 10, 0)
	unused := newDiscountCoupon(t, h, "UNUSED", 10, 0)
	order := seedOrder(t, db, 100)
	_, err := h.Apply(ctx, ApplyRequest{CouponID: used.ID, OrderID: order.ID})
	require.NoError(t, err)

	err = h.DeleteCoupon(ctx, used.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeCouponInUse))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	require.NoError(t, h.DeleteCoupon(ctx, unused.ID))
	_, err = h.GetCoupon(ctx, unused.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateCoupon_MergesVariantFields(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	c := newDiscountCoupon(t, h, "MERGE", 40, 200)
	inactive := false

	v, err := h.UpdateCoupon(ctx, c.ID, CouponRequest{DiscountAmount: dec(60), IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "MERGE", *v.Code)
	assert.True(t, v.DiscountAmount.Equal(decimal.NewFromInt(60)))
	assert.True(t, v.MinOrderAmountForDiscount.Equal(decimal.NewFromInt(200)))
	assert.False(t, v.IsActive)

	newDiscountCoupon(t, h, "TAKEN", 5, 0)
	_, err = h.UpdateCoupon(ctx, c.ID, CouponRequest{Code: str("taken")})
	assert.True(t, apperr.HasCode(err, apperr.CodeDuplicateCouponCode))

	// switching variant requires the new variant's fields
	_, err = h.UpdateCoupon(ctx, c.ID, CouponRequest{Type: "additional_item"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestApplicableAdditionalItemsAndStats(t *testing.T) {
	db := dbtest.Open(t)
	h := NewCouponHandler(db)
	ctx := context.Background()

	p := dbtest.SeedProduct(t, db, "Dates", 150, 5)
	for _, min := range []int64{500, 1000, 3000} {
		_, err := h.CreateCoupon(ctx, CouponRequest{
			Type:           "additional_item",
			Name:           str("Free dates"),
			ProductID:      &p.ID,
			MinOrderAmount: dec(min),
		})
		require.NoError(t, err)
	}

	views, err := h.ApplicableAdditionalItems(ctx, decimal.NewFromInt(1500))
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].MinOrderAmount.Equal(decimal.NewFromInt(1000)))

	_, err = h.ApplicableAdditionalItems(ctx, decimal.Zero)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	c := newDiscountCoupon(t, h, "STATS", 25, 0)
	for i := 0; i < 2; i++ {
		order := seedOrder(t, db, 100)
		_, err := h.Apply(ctx, ApplyRequest{CouponID: c.ID, OrderID: order.ID})
		require.NoError(t, err)
	}
	stats, err := h.UsageStats(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsages)
	assert.True(t, stats.TotalDiscountGiven.Equal(decimal.NewFromInt(50)))

	list, page, err := h.ListCoupons(ctx, database.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, int64(4), page.Total)
}

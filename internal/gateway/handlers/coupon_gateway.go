package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/gateway/respond"
	coupons "storefront-backend/internal/services/coupon/handler"
)

type CouponHTTPHandler struct {
	coupons *coupons.CouponHandler
}

func NewCouponHTTPHandler(h *coupons.CouponHandler) *CouponHTTPHandler {
	return &CouponHTTPHandler{coupons: h}
}

func (s *CouponHTTPHandler) Validate(c *gin.Context) {
	var req coupons.ValidateRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.coupons.Validate(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, result)
}

func (s *CouponHTTPHandler) Apply(c *gin.Context) {
	var req coupons.ApplyRequest
	if !bindJSON(c, &req) {
		return
	}
	usage, err := s.coupons.Apply(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, usage)
}

func (s *CouponHTTPHandler) ApplicableAdditionalItems(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("orderAmount"))
	if err != nil {
		respond.BadRequest(c, "orderAmount must be a number")
		return
	}
	items, err := s.coupons.ApplicableAdditionalItems(c.Request.Context(), amount)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, items)
}

func (s *CouponHTTPHandler) ListCoupons(c *gin.Context) {
	list, page, err := s.coupons.ListCoupons(c.Request.Context(), buildPageRequest(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Paginated(c, list, page)
}

func (s *CouponHTTPHandler) GetCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	coupon, err := s.coupons.GetCoupon(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, coupon)
}

func (s *CouponHTTPHandler) UsageStats(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stats, err := s.coupons.UsageStats(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, stats)
}

func (s *CouponHTTPHandler) CreateCoupon(c *gin.Context) {
	var req coupons.CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := s.coupons.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, coupon)
}

func (s *CouponHTTPHandler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req coupons.CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := s.coupons.UpdateCoupon(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, coupon)
}

func (s *CouponHTTPHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.coupons.DeleteCoupon(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Coupon deleted")
}

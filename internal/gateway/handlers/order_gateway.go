package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/gateway/respond"
	orders "storefront-backend/internal/services/order/handler"
)

type OrderHTTPHandler struct {
	orders *orders.OrderHandler
}

func NewOrderHTTPHandler(h *orders.OrderHandler) *OrderHTTPHandler {
	return &OrderHTTPHandler{orders: h}
}

func (s *OrderHTTPHandler) CreateOrder(c *gin.Context) {
	var req orders.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := s.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, order)
}

func (s *OrderHTTPHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := s.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, order)
}

func (s *OrderHTTPHandler) GetOrderByNumber(c *gin.Context) {
	order, err := s.orders.GetOrderByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, order)
}

func (s *OrderHTTPHandler) OrdersByPhone(c *gin.Context) {
	list, err := s.orders.OrdersByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, list)
}

func (s *OrderHTTPHandler) ListOrders(c *gin.Context) {
	list, page, err := s.orders.ListOrders(c.Request.Context(), buildPageRequest(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Paginated(c, list, page)
}

func (s *OrderHTTPHandler) Stats(c *gin.Context) {
	stats, err := s.orders.Stats(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, stats)
}

func (s *OrderHTTPHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req orders.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	target, err := orders.ParseOrderStatus(req.Status)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	order, err := s.orders.UpdateStatus(c.Request.Context(), id, target)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, order)
}

func (s *OrderHTTPHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req orders.UpdatePaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	target, err := orders.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	order, err := s.orders.UpdatePaymentStatus(c.Request.Context(), id, target)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, order)
}

func (s *OrderHTTPHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := s.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, order)
}

func (s *OrderHTTPHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Order deleted")
}

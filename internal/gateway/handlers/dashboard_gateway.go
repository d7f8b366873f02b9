package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/gateway/respond"
	dashboard "storefront-backend/internal/services/dashboard/handler"
)

type DashboardHTTPHandler struct {
	dashboard *dashboard.DashboardHandler
}

func NewDashboardHTTPHandler(h *dashboard.DashboardHandler) *DashboardHTTPHandler {
	return &DashboardHTTPHandler{dashboard: h}
}

func (s *DashboardHTTPHandler) Stats(c *gin.Context) {
	stats, err := s.dashboard.Stats(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, stats)
}

func (s *DashboardHTTPHandler) SalesReport(c *gin.Context) {
	start, ok := parseDateQuery(c, "start", false)
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end", true)
	if !ok {
		return
	}
	report, err := s.dashboard.SalesReport(c.Request.Context(), start, end)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, report)
}

func (s *DashboardHTTPHandler) TopProducts(c *gin.Context) {
	top, err := s.dashboard.TopProducts(c.Request.Context(), parseIntQuery(c, "limit", dashboard.DefaultTopProducts))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, top)
}

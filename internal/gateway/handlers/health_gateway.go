package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/health"
)

type HealthHTTPHandler struct {
	checker *health.Checker
}

func NewHealthHTTPHandler(checker *health.Checker) *HealthHTTPHandler {
	return &HealthHTTPHandler{checker: checker}
}

func (s *HealthHTTPHandler) Health(c *gin.Context) {
	report := s.checker.Check(c.Request.Context())

	httpStatus := http.StatusOK
	if report.Status == health.StatusUnavailable {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    report.Status,
		"message":   "Server is running",
		"timestamp": report.Timestamp,
	})
}

func (s *HealthHTTPHandler) Detailed(c *gin.Context) {
	c.JSON(http.StatusOK, s.checker.Check(c.Request.Context()))
}

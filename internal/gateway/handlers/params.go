package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database"
	"storefront-backend/internal/gateway/respond"
)

func parseIDParam(c *gin.Context, param string) (int64, bool) {
	val, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || val <= 0 {
		respond.BadRequest(c, "Invalid "+param)
		return 0, false
	}
	return val, true
}

func parseIntQuery(c *gin.Context, param string, def int) int {
	str := c.Query(param)
	if str == "" {
		return def
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return def
	}
	return val
}

func buildPageRequest(c *gin.Context) database.PageRequest {
	return database.NewPageRequest(
		parseIntQuery(c, "page", 1),
		parseIntQuery(c, "limit", database.DefaultPageSize),
	)
}

// bindJSON writes the 400 envelope itself when the body does not decode.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respond.Fail(c, apperr.Validation("Invalid request body: %s", err.Error()))
		return false
	}
	return true
}

// parseDateQuery accepts RFC 3339 or YYYY-MM-DD. Date-only end bounds cover the whole day.
func parseDateQuery(c *gin.Context, param string, endOfDay bool) (time.Time, bool) {
	str := c.Query(param)
	if str == "" {
		respond.BadRequest(c, param+" is required")
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, str); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, str)
	if err != nil {
		respond.BadRequest(c, "Invalid "+param+", expected YYYY-MM-DD")
		return time.Time{}, false
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

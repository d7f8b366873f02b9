package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/database/models"
	"storefront-backend/internal/gateway/respond"
	inventory "storefront-backend/internal/services/inventory/handler"
)

type InventoryHTTPHandler struct {
	inventory *inventory.InventoryHandler
}

func NewInventoryHTTPHandler(h *inventory.InventoryHandler) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{inventory: h}
}

func (s *InventoryHTTPHandler) ListInventory(c *gin.Context) {
	items, page, err := s.inventory.ListInventory(c.Request.Context(), buildPageRequest(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Paginated(c, items, page)
}

func (s *InventoryHTTPHandler) GetLowStockItems(c *gin.Context) {
	items, err := s.inventory.GetLowStockItems(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, items)
}

func (s *InventoryHTTPHandler) GetInventory(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	inv, err := s.inventory.GetInventory(c.Request.Context(), productID)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, inv)
}

func (s *InventoryHTTPHandler) CreateInventory(c *gin.Context) {
	var req inventory.CreateInventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, err := s.inventory.CreateInventory(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, inv)
}

func (s *InventoryHTTPHandler) UpdateInventory(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var req inventory.UpdateInventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, err := s.inventory.UpdateInventory(c.Request.Context(), productID, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, inv)
}

func (s *InventoryHTTPHandler) DeleteInventory(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	if err := s.inventory.DeleteInventory(c.Request.Context(), productID); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Inventory deleted")
}

func (s *InventoryHTTPHandler) ReserveStock(c *gin.Context) {
	s.moveStock(c, s.inventory.ReserveStock)
}

func (s *InventoryHTTPHandler) ReleaseStock(c *gin.Context) {
	s.moveStock(c, s.inventory.ReleaseStock)
}

func (s *InventoryHTTPHandler) ListMovements(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	movements, err := s.inventory.ListMovements(c.Request.Context(), productID, parseIntQuery(c, "limit", 50))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, movements)
}

func (s *InventoryHTTPHandler) moveStock(c *gin.Context, op func(context.Context, int64, inventory.StockRequest) (*models.Inventory, error)) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var req inventory.StockRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, err := op(c.Request.Context(), productID, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, inv)
}

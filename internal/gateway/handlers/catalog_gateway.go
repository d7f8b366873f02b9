package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/database/models"
	"storefront-backend/internal/gateway/middleware"
	"storefront-backend/internal/gateway/respond"
	catalog "storefront-backend/internal/services/catalog/handler"
)

type CatalogHTTPHandler struct {
	catalog *catalog.CatalogHandler
}

func NewCatalogHTTPHandler(h *catalog.CatalogHandler) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{catalog: h}
}

// Products

func (s *CatalogHTTPHandler) ListProducts(c *gin.Context) {
	products, err := s.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, products)
}

func (s *CatalogHTTPHandler) ListAllProducts(c *gin.Context) {
	products, page, err := s.catalog.ListAllProducts(c.Request.Context(), buildPageRequest(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Paginated(c, products, page)
}

func (s *CatalogHTTPHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := s.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, product)
}

func (s *CatalogHTTPHandler) CreateProduct(c *gin.Context) {
	var req catalog.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := s.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, product)
}

func (s *CatalogHTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := s.catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, product)
}

func (s *CatalogHTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Product deleted")
}

// Categories

func (s *CatalogHTTPHandler) ListCategories(c *gin.Context) {
	categories, err := s.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, categories)
}

func (s *CatalogHTTPHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := s.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, category)
}

func (s *CatalogHTTPHandler) CreateCategory(c *gin.Context) {
	var req catalog.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := s.catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, category)
}

func (s *CatalogHTTPHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := s.catalog.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, category)
}

func (s *CatalogHTTPHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Category deleted")
}

// Grains

func (s *CatalogHTTPHandler) ListActiveGrains(c *gin.Context) {
	grains, err := s.catalog.ListActiveGrains(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, grains)
}

func (s *CatalogHTTPHandler) ListGrains(c *gin.Context) {
	grains, err := s.catalog.ListGrains(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, grains)
}

func (s *CatalogHTTPHandler) GetGrain(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	grain, err := s.catalog.GetGrain(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, grain)
}

func (s *CatalogHTTPHandler) CreateGrain(c *gin.Context) {
	var req catalog.GrainRequest
	if !bindJSON(c, &req) {
		return
	}
	grain, err := s.catalog.CreateGrain(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, grain)
}

func (s *CatalogHTTPHandler) UpdateGrain(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.GrainRequest
	if !bindJSON(c, &req) {
		return
	}
	grain, err := s.catalog.UpdateGrain(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, grain)
}

func (s *CatalogHTTPHandler) DeactivateGrain(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	grain, err := s.catalog.DeactivateGrain(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, grain)
}

func (s *CatalogHTTPHandler) DeleteGrain(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.DeleteGrain(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Grain deleted")
}

// Promos

func (s *CatalogHTTPHandler) ListActivePromos(c *gin.Context) {
	device := models.DeviceType(strings.ToUpper(c.Query("device")))
	promos, err := s.catalog.ListActivePromos(c.Request.Context(), device)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, promos)
}

func (s *CatalogHTTPHandler) ListPromos(c *gin.Context) {
	promos, err := s.catalog.ListPromos(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, promos)
}

func (s *CatalogHTTPHandler) GetPromo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	promo, err := s.catalog.GetPromo(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, promo)
}

func (s *CatalogHTTPHandler) CreatePromo(c *gin.Context) {
	var req catalog.PromoRequest
	if !bindJSON(c, &req) {
		return
	}
	promo, err := s.catalog.CreatePromo(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, promo)
}

func (s *CatalogHTTPHandler) UpdatePromo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.PromoRequest
	if !bindJSON(c, &req) {
		return
	}
	promo, err := s.catalog.UpdatePromo(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, promo)
}

func (s *CatalogHTTPHandler) DeletePromo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.DeletePromo(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "Promo deleted")
}

// Package gateway assembles the HTTP API.
package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database/models"
	"storefront-backend/internal/gateway/handlers"
	"storefront-backend/internal/gateway/middleware"
	"storefront-backend/internal/gateway/respond"
	"storefront-backend/internal/health"
	catalog "storefront-backend/internal/services/catalog/handler"
	coupons "storefront-backend/internal/services/coupon/handler"
	dashboard "storefront-backend/internal/services/dashboard/handler"
	inventory "storefront-backend/internal/services/inventory/handler"
	orders "storefront-backend/internal/services/order/handler"
	users "storefront-backend/internal/services/user/handler"
	sysutils "storefront-backend/internal/utils"
)

type Services struct {
	Inventory *inventory.InventoryHandler
	Coupons   *coupons.CouponHandler
	Orders    *orders.OrderHandler
	Catalog   *catalog.CatalogHandler
	Users     *users.UserHandler
	Dashboard *dashboard.DashboardHandler
	Health    *health.Checker
}

type Options struct {
	Tokens      *sysutils.TokenIssuer
	RateLimit   string
	CORSOrigins []string
}

func NewRouter(svc Services, opts Options) (*gin.Engine, error) {
	limit, err := middleware.RateLimit(opts.RateLimit)
	if err != nil {
		return nil, err
	}
	admin := middleware.RequireRole(opts.Tokens, models.RoleAdmin)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(opts.CORSOrigins))

	r.NoRoute(func(c *gin.Context) {
		respond.Abort(c, http.StatusNotFound, apperr.CodeNotFound, "Route not found")
	})

	healthHandler := handlers.NewHealthHTTPHandler(svc.Health)
	r.GET("/health", healthHandler.Health)
	r.GET("/health/detailed", healthHandler.Detailed)

	api := r.Group("/api")

	userHandler := handlers.NewUserHTTPHandler(svc.Users)
	auth := api.Group("/auth/admin")
	{
		auth.POST("/signup", limit, userHandler.AdminSignup)
		auth.POST("/login", limit, userHandler.AdminLogin)
	}
	usersGroup := api.Group("/users", admin)
	{
		usersGroup.GET("", userHandler.ListUsers)
		usersGroup.GET("/:id", userHandler.GetUser)
		usersGroup.POST("", userHandler.CreateUser)
		usersGroup.PUT("/:id", userHandler.UpdateUser)
		usersGroup.DELETE("/:id", userHandler.DeleteUser)
	}

	inventoryHandler := handlers.NewInventoryHTTPHandler(svc.Inventory)
	inv := api.Group("/inventory")
	{
		inv.GET("", admin, inventoryHandler.ListInventory)
		inv.GET("/low-stock", admin, inventoryHandler.GetLowStockItems)
		inv.GET("/:productId", inventoryHandler.GetInventory)
		inv.GET("/:productId/movements", admin, inventoryHandler.ListMovements)
		inv.POST("", admin, inventoryHandler.CreateInventory)
		inv.PUT("/:productId", admin, inventoryHandler.UpdateInventory)
		inv.DELETE("/:productId", admin, inventoryHandler.DeleteInventory)
		inv.POST("/:productId/reserve", admin, inventoryHandler.ReserveStock)
		inv.POST("/:productId/release", admin, inventoryHandler.ReleaseStock)
	}

	couponHandler := handlers.NewCouponHTTPHandler(svc.Coupons)
	cp := api.Group("/coupons")
	{
		cp.POST("/validate", couponHandler.Validate)
		cp.POST("/apply", limit, couponHandler.Apply)
		cp.GET("/additional-items", couponHandler.ApplicableAdditionalItems)
		cp.GET("", admin, couponHandler.ListCoupons)
		cp.GET("/:id", admin, couponHandler.GetCoupon)
		cp.GET("/:id/stats", admin, couponHandler.UsageStats)
		cp.POST("", admin, couponHandler.CreateCoupon)
		cp.PUT("/:id", admin, couponHandler.UpdateCoupon)
		cp.PATCH("/:id", admin, couponHandler.UpdateCoupon)
		cp.DELETE("/:id", admin, couponHandler.DeleteCoupon)
	}

	orderHandler := handlers.NewOrderHTTPHandler(svc.Orders)
	ord := api.Group("/orders")
	{
		ord.POST("", limit, orderHandler.CreateOrder)
		ord.GET("/:id", orderHandler.GetOrder)
		ord.GET("/number/:orderNumber", orderHandler.GetOrderByNumber)
		ord.GET("/customer/:phone", orderHandler.OrdersByPhone)
		ord.GET("", admin, orderHandler.ListOrders)
		ord.GET("/stats", admin, orderHandler.Stats)
		ord.PATCH("/:id/status", admin, orderHandler.UpdateStatus)
		ord.PATCH("/:id/payment-status", admin, orderHandler.UpdatePaymentStatus)
		ord.POST("/:id/cancel", admin, orderHandler.CancelOrder)
		ord.DELETE("/:id", admin, orderHandler.DeleteOrder)
	}

	catalogHandler := handlers.NewCatalogHTTPHandler(svc.Catalog)
	products := api.Group("/products")
	{
		products.GET("", catalogHandler.ListProducts)
		products.GET("/all", admin, catalogHandler.ListAllProducts)
		products.GET("/:id", catalogHandler.GetProduct)
		products.POST("", admin, catalogHandler.CreateProduct)
		products.PUT("/:id", admin, catalogHandler.UpdateProduct)
		products.DELETE("/:id", admin, catalogHandler.DeleteProduct)
	}
	categories := api.Group("/categories")
	{
		categories.GET("", catalogHandler.ListCategories)
		categories.GET("/:id", catalogHandler.GetCategory)
		categories.POST("", admin, catalogHandler.CreateCategory)
		categories.PUT("/:id", admin, catalogHandler.UpdateCategory)
		categories.DELETE("/:id", admin, catalogHandler.DeleteCategory)
	}
	grains := api.Group("/grains")
	{
		grains.GET("", catalogHandler.ListActiveGrains)
		grains.GET("/all", admin, catalogHandler.ListGrains)
		grains.GET("/:id", catalogHandler.GetGrain)
		grains.POST("", admin, catalogHandler.CreateGrain)
		grains.PUT("/:id", admin, catalogHandler.UpdateGrain)
		grains.PATCH("/:id/deactivate", admin, catalogHandler.DeactivateGrain)
		grains.DELETE("/:id", admin, catalogHandler.DeleteGrain)
	}
	promos := api.Group("/promos")
	{
		promos.GET("", catalogHandler.ListActivePromos)
		promos.GET("/all", admin, catalogHandler.ListPromos)
		promos.GET("/:id", admin, catalogHandler.GetPromo)
		promos.POST("", admin, catalogHandler.CreatePromo)
		promos.PUT("/:id", admin, catalogHandler.UpdatePromo)
		promos.DELETE("/:id", admin, catalogHandler.DeletePromo)
	}

	dashboardHandler := handlers.NewDashboardHTTPHandler(svc.Dashboard)
	dash := api.Group("/dashboard", admin)
	{
		dash.GET("/stats", dashboardHandler.Stats)
		dash.GET("/sales", dashboardHandler.SalesReport)
		dash.GET("/top-products", dashboardHandler.TopProducts)
	}

	return r, nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"storefront-backend/config"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database"
	"storefront-backend/internal/gateway"
	"storefront-backend/internal/health"
	catalog "storefront-backend/internal/services/catalog/handler"
	coupons "storefront-backend/internal/services/coupon/handler"
	dashboard "storefront-backend/internal/services/dashboard/handler"
	inventory "storefront-backend/internal/services/inventory/handler"
	orders "storefront-backend/internal/services/order/handler"
	users "storefront-backend/internal/services/user/handler"
	"storefront-backend/internal/telemetry"
	sysutils "storefront-backend/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	telemetry.InitLogger(cfg.Server.LogLevel)
	gin.SetMode(cfg.Server.Mode)

	if cfg.Auth.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		slog.Error("failed to connect to db", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate db", "error", err)
		os.Exit(1)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}
	c := cache.New(redisClient)
	tokens := sysutils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	checker := health.NewChecker(db, redisClient)

	router, err := gateway.NewRouter(gateway.Services{
		Inventory: inventory.NewInventoryHandler(db, c),
		Coupons:   coupons.NewCouponHandler(db),
		Orders:    orders.NewOrderHandler(db, c, cfg.Orders),
		Catalog:   catalog.NewCatalogHandler(db, c, cfg.Catalog),
		Users:     users.NewUserHandler(db, c, tokens, cfg.Auth.SignupCode),
		Dashboard: dashboard.NewDashboardHandler(db, c),
		Health:    checker,
	}, gateway.Options{
		Tokens:      tokens,
		RateLimit:   cfg.Server.RateLimit,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	grpcAddr := ":" + cfg.Server.GRPCPort
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		slog.Error("failed to listen", "addr", grpcAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	checker.Register(grpcServer)
	go checker.Run(ctx, 15*time.Second)

	go func() {
		slog.Info("health gRPC listening", "addr", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

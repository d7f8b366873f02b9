// Package health reports database and redis reachability over HTTP and gRPC.
package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"
)

const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
	StatusDisabled    = "disabled"
)

type Component struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Report struct {
	Status     string               `json:"overall_status"`
	Components map[string]Component `json:"services"`
	Timestamp  time.Time            `json:"timestamp"`
}

// Checker pings the database and redis. The database is required; redis only degrades.
type Checker struct {
	db     *gorm.DB
	redis  *redis.Client
	server *health.Server
}

// NewChecker accepts a nil redis client when caching is off.
func NewChecker(db *gorm.DB, rdb *redis.Client) *Checker {
	return &Checker{db: db, redis: rdb, server: health.NewServer()}
}

func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	report := Report{
		Status:     StatusHealthy,
		Components: make(map[string]Component, 2),
		Timestamp:  time.Now(),
	}

	if err := c.pingDB(ctx); err != nil {
		slog.ErrorContext(ctx, "database health check failed", "error", err)
		report.Components["database"] = Component{Status: StatusUnavailable, Message: "Database is not responding"}
		report.Status = StatusUnavailable
	} else {
		report.Components["database"] = Component{Status: StatusHealthy, Message: "Database is responding"}
	}

	switch {
	case c.redis == nil:
		report.Components["redis"] = Component{Status: StatusDisabled, Message: "Caching is off"}
	case c.redis.Ping(ctx).Err() != nil:
		report.Components["redis"] = Component{Status: StatusUnavailable, Message: "Redis is not responding"}
		if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	default:
		report.Components["redis"] = Component{Status: StatusHealthy, Message: "Redis is responding"}
	}
	return report
}

// Refresh runs Check and publishes the result as the gRPC serving status.
func (c *Checker) Refresh(ctx context.Context) Report {
	report := c.Check(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if report.Status == StatusUnavailable {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", status)
	return report
}

// Run refreshes every interval until ctx is done.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		report := c.Refresh(ctx)
		if report.Status != last {
			slog.InfoContext(ctx, "health status changed", "status", report.Status)
			last = report.Status
		}

		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Register exposes grpc.health.v1.Health and server reflection on s.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
	reflection.Register(s)
}

func (c *Checker) pingDB(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

package health

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"storefront-backend/internal/database/dbtest"
)

func servingStatus(t *testing.T, c *Checker) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := c.server.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	return resp.Status
}

func TestChecker_Healthy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewChecker(dbtest.Open(t), rdb)
	report := c.Refresh(context.Background())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Components["redis"].Status)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, c))
}

func TestChecker_RedisDownDegrades(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	c := NewChecker(dbtest.Open(t), rdb)
	report := c.Refresh(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusUnavailable, report.Components["redis"].Status)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, c))
}

func TestChecker_DatabaseDown(t *testing.T) {
	db := dbtest.Open(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	c := NewChecker(db, nil)
	report := c.Refresh(context.Background())

	assert.Equal(t, StatusUnavailable, report.Status)
	assert.Equal(t, "Database is not responding", report.Components["database"].Message)
	assert.Equal(t, StatusDisabled, report.Components["redis"].Status)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, c))
}

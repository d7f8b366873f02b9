package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/dbtest"
	"storefront-backend/internal/database/models"
	sysutils "storefront-backend/internal/utils"
)

func newHandler(t *testing.T) *UserHandler {
	t.Helper()
	return NewUserHandler(dbtest.Open(t), cache.Noop{}, sysutils.NewTokenIssuer("secret", time.Hour), "open-sesame")
}

func TestAdminSignupAndLogin(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	_, err := h.AdminSignup(ctx, SignupRequest{Username: "root", Email: "root@shop.in", Password: "hunter22", SecretCode: "wrong"})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	resp, err := h.AdminSignup(ctx, SignupRequest{Username: "root", Email: "Root@Shop.in", Password: "hunter22", SecretCode: "open-sesame"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Equal(t, "root@shop.in", resp.User.Email)

	_, err = h.AdminSignup(ctx, SignupRequest{Username: "other", Email: "root@shop.in", Password: "hunter22", SecretCode: "open-sesame"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	login, err := h.AdminLogin(ctx, LoginRequest{Username: "root", Password: "hunter22"})
	require.NoError(t, err)
	claims, err := h.tokens.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, resp.User.ID, claims.UserId)

	_, err = h.AdminLogin(ctx, LoginRequest{Username: "root", Password: "nope"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestAdminLogin_RejectsNonAdmins(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	_, err := h.CreateUser(ctx, CreateUserRequest{Username: "cust", Email: "c@shop.in", Password: "secret1"})
	require.NoError(t, err)

	_, err = h.AdminLogin(ctx, LoginRequest{Username: "cust", Password: "secret1"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestAdminSignup_DisabledWithoutCode(t *testing.T) {
	h := NewUserHandler(dbtest.Open(t), cache.Noop{}, sysutils.NewTokenIssuer("secret", time.Hour), "")
	_, err := h.AdminSignup(context.Background(), SignupRequest{Username: "a", Email: "a@b.in", Password: "secret1"})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestUserCRUD(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	u, err := h.CreateUser(ctx, CreateUserRequest{Username: "keeper", Email: "k@shop.in", Password: "secret1", Role: models.RoleShopkeeper})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = h.CreateUser(ctx, CreateUserRequest{Username: "x", Email: "x@shop.in", Password: "secret1", Role: "GOD"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	email := "keeper@shop.in"
	updated, err := h.UpdateUser(ctx, u.ID, UpdateUserRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)

	got, err := h.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, email, got.Email)

	users, page, err := h.ListUsers(ctx, database.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, h.DeleteUser(ctx, u.ID))
	_, err = h.GetUser(ctx, u.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.True(t, apperr.IsKind(h.DeleteUser(ctx, u.ID), apperr.KindNotFound))
}

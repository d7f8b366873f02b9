package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/gateway/respond"
	users "storefront-backend/internal/services/user/handler"
)

type UserHTTPHandler struct {
	users *users.UserHandler
}

func NewUserHTTPHandler(h *users.UserHandler) *UserHTTPHandler {
	return &UserHTTPHandler{users: h}
}

func (s *UserHTTPHandler) AdminSignup(c *gin.Context) {
	var req users.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := s.users.AdminSignup(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, resp)
}

func (s *UserHTTPHandler) AdminLogin(c *gin.Context) {
	var req users.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := s.users.AdminLogin(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, resp)
}

func (s *UserHTTPHandler) ListUsers(c *gin.Context) {
	list, page, err := s.users.ListUsers(c.Request.Context(), buildPageRequest(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Paginated(c, list, page)
}

func (s *UserHTTPHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := s.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, user)
}

func (s *UserHTTPHandler) CreateUser(c *gin.Context) {
	var req users.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := s.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, user)
}

func (s *UserHTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req users.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := s.users.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, user)
}

func (s *UserHTTPHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.users.DeleteUser(c.Request.Context(), id); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Message(c, "User deleted")
}

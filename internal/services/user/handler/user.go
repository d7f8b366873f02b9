package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/database"
	"storefront-backend/internal/database/models"
	sysutils "storefront-backend/internal/utils"
)

const USER_CACHE_PREFIX = "user:"

type UserHandler struct {
	db         *gorm.DB
	cache      cache.Cache
	tokens     *sysutils.TokenIssuer
	signupCode string
}

func NewUserHandler(db *gorm.DB, c cache.Cache, tokens *sysutils.TokenIssuer, signupCode string) *UserHandler {
	return &UserHandler{
		db:         db,
		cache:      c,
		tokens:     tokens,
		signupCode: signupCode,
	}
}

func (s *UserHandler) InvalidateUserCaches(ctx context.Context, userIDs ...int64) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, fmt.Sprintf("%s%d", USER_CACHE_PREFIX, id))
	}
	s.cache.Delete(ctx, keys...)
}

type SignupRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	SecretCode string `json:"secretCode" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Username string      `json:"username" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role"`
}

type UpdateUserRequest struct {
	Username *string      `json:"username"`
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *models.Role `json:"role"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// AdminSignup registers an ADMIN account. It is gated by the configured signup code.
func (s *UserHandler) AdminSignup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if s.signupCode == "" || subtle.ConstantTimeCompare([]byte(req.SecretCode), []byte(s.signupCode)) != 1 {
		return nil, apperr.Forbidden("Invalid secret code")
	}

	user, err := s.createUser(ctx, req.Username, req.Email, req.Password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *UserHandler) AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, apperr.Validation("Username and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid admin credentials")
		}
		return nil, apperr.Internal("database error", err)
	}
	if user.Role != models.RoleAdmin {
		return nil, apperr.Unauthorized("Invalid admin credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("Invalid admin credentials")
	}

	slog.InfoContext(ctx, "admin login", "user_id", user.ID)
	return s.issue(&user)
}

func (s *UserHandler) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role %q", role)
	}
	return s.createUser(ctx, req.Username, req.Email, req.Password, role)
}

func (s *UserHandler) GetUser(ctx context.Context, id int64) (*models.User, error) {
	key := fmt.Sprintf("%s%d", USER_CACHE_PREFIX, id)
	var user models.User
	if s.cache.Get(ctx, key, &user) {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeNotFound, "User not found")
		}
		return nil, apperr.Internal("database error", err)
	}

	s.cache.Set(ctx, key, user, cache.CACHE_TTL_MEDIUM)
	return &user, nil
}

func (s *UserHandler) ListUsers(ctx context.Context, page database.PageRequest) ([]models.User, database.Pagination, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}

	var users []models.User
	if err := page.Scope(s.db.WithContext(ctx)).Order("id").Find(&users).Error; err != nil {
		return nil, database.Pagination{}, apperr.Internal("database error", err)
	}
	return users, page.Result(total), nil
}

func (s *UserHandler) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(apperr.CodeNotFound, "User not found")
			}
			return apperr.Internal("database error", err)
		}

		if req.Username != nil {
			user.Username = strings.TrimSpace(*req.Username)
		}
		if req.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if user.Username == "" || user.Email == "" {
			return apperr.Validation("username and email cannot be empty")
		}
		if req.Role != nil {
			if !req.Role.Valid() {
				return apperr.Validation("invalid role %q", *req.Role)
			}
			user.Role = *req.Role
		}
		if req.Password != nil {
			hash, err := hashPassword(*req.Password)
			if err != nil {
				return err
			}
			user.Password = hash
		}

		if err := checkUnique(tx, user.Username, user.Email, user.ID); err != nil {
			return err
		}
		if err := tx.Save(&user).Error; err != nil {
			return translateUserError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateUserCaches(ctx, id)
	return &user, nil
}

func (s *UserHandler) DeleteUser(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return apperr.Internal("failed to delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.CodeNotFound, "User not found")
	}
	s.InvalidateUserCaches(ctx, id)
	return nil
}

func (s *UserHandler) createUser(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, apperr.Validation("username, email, and password are required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, username, email, 0); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return translateUserError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

func (s *UserHandler) issue(user *models.User) (*AuthResponse, error) {
	token, exp, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperr.Internal("error generating token", err)
	}
	return &AuthResponse{Token: token, ExpiresAt: exp, User: user}, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", apperr.Validation("password must be at least 6 characters")
	}
	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Internal("error hashing password", err)
	}
	return string(pwHash), nil
}

func checkUnique(tx *gorm.DB, username, email string, selfID int64) error {
	var n int64
	if err := tx.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, selfID).
		Count(&n).Error; err != nil {
		return apperr.Internal("database error while checking existing user", err)
	}
	if n > 0 {
		return apperr.Conflict(apperr.CodeDuplicate, "username or email already exists")
	}
	return nil
}

func translateUserError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict(apperr.CodeDuplicate, "username or email already exists")
	}
	return apperr.Internal("error saving user", err)
}

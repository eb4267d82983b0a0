package services

import (
	"time"

	"github.com/threepillars/storefront/internal/config"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	var user models.User
	err := s.db.Where("username = ?", req.Username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewUnauthorized("invalid username or password")
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, response.NewForbidden("account is disabled")
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid username or password")
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login", now)
	user.LastLogin = &now

	return &LoginResponse{
		Token:    token,
		User:     &user,
		ExpireAt: now.Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
	}, nil
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates a regular user account.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	var count int64
	s.db.Model(&models.User{}).Where("username = ? OR email = ?", req.Username, req.Email).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("username or email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewUnauthorized("old password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password", hash).Error
}

// EnsureAdminUser creates the bootstrap superuser when no admin exists yet.
func (s *AuthService) EnsureAdminUser(username, password string) error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return s.db.Create(&models.User{
		Username: username,
		Email:    username + "@localhost",
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}).Error
}

// internal/domain/user/service.go
package user

import (
	"strings"
	"time"

	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"github.com/your-org/bottling-erp/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles staff account business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// CreateUserRequest represents staff registration data. Only admins reach
// this operation; the route is behind the admin gate.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role" binding:"required"`
}

// LoginRequest represents staff login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// CreateUser registers a new staff account
func (s *Service) CreateUser(req *CreateUserRequest) (*User, error) {
	if !req.Role.IsValid() {
		return nil, apperr.Validation("unknown role %q", req.Role)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Storage("failed to check email", err)
	}
	if count > 0 {
		return nil, apperr.Conflict("user with email %s already exists", email)
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	u := &User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		IsActive:  true,
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, apperr.Storage("failed to create user", err)
	}

	u.Password = ""
	return u, nil
}

// Login authenticates a staff member and issues a token pair
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var u User
	result := s.db.Where("email = ? AND is_active = ?", strings.ToLower(req.Email), true).First(&u)
	if result.Error != nil {
		return nil, apperr.Forbidden("invalid email or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, apperr.Forbidden("invalid email or password")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, apperr.Storage("failed to generate access token", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, apperr.Storage("failed to generate refresh token", err)
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	s.db.Save(&u)

	u.Password = ""
	return &AuthResponse{
		User:         &u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// RefreshToken generates new tokens using a refresh token. The denylist
// check happens in the handler before this is called.
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Forbidden("invalid refresh token")
	}

	var u User
	result := s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&u)
	if result.Error != nil {
		return nil, apperr.Forbidden("user not found or inactive")
	}

	newAccessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, apperr.Storage("failed to generate access token", err)
	}

	newRefreshToken := refreshToken
	if s.config.JWT.RefreshTokenRotation {
		newRefreshToken, err = s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
		if err != nil {
			return nil, apperr.Storage("failed to generate refresh token", err)
		}
	}

	u.Password = ""
	return &AuthResponse{
		User:         &u,
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// GetProfile gets a staff profile by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var u User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&u)
	if result.Error != nil {
		return nil, apperr.NotFound("user %d not found", userID)
	}

	u.Password = ""
	return &u, nil
}

// ChangePassword changes a staff password after verifying the current one
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	var u User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&u)
	if result.Error != nil {
		return apperr.NotFound("user %d not found", userID)
	}

	if err := s.passwordManager.VerifyPassword(currentPassword, u.Password); err != nil {
		return apperr.Forbidden("current password is incorrect")
	}

	hashedPassword, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return apperr.Validation("%s", err.Error())
	}

	if err := s.db.Model(&u).Update("password", hashedPassword).Error; err != nil {
		return apperr.Storage("failed to update password", err)
	}
	return nil
}

// ListUsers retrieves all staff accounts, active and inactive
func (s *Service) ListUsers() ([]User, error) {
	var users []User
	if err := s.db.Order("email ASC").Find(&users).Error; err != nil {
		return nil, apperr.Storage("failed to list users", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// DeactivateUser locks a staff member out without deleting the record
func (s *Service) DeactivateUser(userID uint) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Update("is_active", false)
	if result.Error != nil {
		return apperr.Storage("failed to deactivate user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user %d not found", userID)
	}
	return nil
}

// ActivateUser reinstates a deactivated staff member
func (s *Service) ActivateUser(userID uint) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Update("is_active", true)
	if result.Error != nil {
		return apperr.Storage("failed to activate user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user %d not found", userID)
	}
	return nil
}

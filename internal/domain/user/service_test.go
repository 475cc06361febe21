// internal/domain/user/service_test.go
package user

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		App: config.AppConfig{Name: "bottling-erp-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough!",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	return NewService(db, cfg)
}

func TestCreateUserAndLogin(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateUser(&CreateUserRequest{
		Email:     "Store@Example.COM",
		Password:  "Vault7Lock",
		FirstName: "Store",
		LastName:  "Keeper",
		Role:      RoleInventory,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if created.Email != "store@example.com" {
		t.Errorf("expected lowercased email, got %s", created.Email)
	}
	if created.Password != "" {
		t.Errorf("password must not be returned")
	}

	resp, err := svc.Login(&LoginRequest{Email: "store@example.com", Password: "Vault7Lock"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Errorf("expected a token pair")
	}
	if resp.User.LastLoginAt == nil {
		t.Errorf("expected last login timestamp to be set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateUser(&CreateUserRequest{
		Email:     "lab@example.com",
		Password:  "Sample9Jar",
		FirstName: "Lab",
		LastName:  "Tech",
		Role:      RoleLab,
	}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	_, err := svc.Login(&LoginRequest{Email: "lab@example.com", Password: "wrong"})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden on bad password, got %v", err)
	}
}

func TestCreateUserDuplicateEmailConflict(t *testing.T) {
	svc := newTestService(t)

	req := &CreateUserRequest{
		Email:     "sales@example.com",
		Password:  "Route4Van",
		FirstName: "Sales",
		LastName:  "Rep",
		Role:      RoleSales,
	}
	if _, err := svc.CreateUser(req); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := svc.CreateUser(req); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict on duplicate email, got %v", err)
	}
}

func TestCreateUserUnknownRole(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateUser(&CreateUserRequest{
		Email:     "x@example.com",
		Password:  "Vault7Lock",
		FirstName: "X",
		LastName:  "Y",
		Role:      Role("janitor"),
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected Validation for unknown role, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateUser(&CreateUserRequest{
		Email:     "admin@example.com",
		Password:  "Gate5Keys",
		FirstName: "Site",
		LastName:  "Admin",
		Role:      RoleAdmin,
	}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	resp, err := svc.Login(&LoginRequest{Email: "admin@example.com", Password: "Gate5Keys"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Errorf("expected a new access token")
	}
	if refreshed.User.Role != RoleAdmin {
		t.Errorf("expected role carried through refresh, got %s", refreshed.User.Role)
	}

	if _, err := svc.RefreshToken(resp.AccessToken); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden refreshing with an access token, got %v", err)
	}
}

func TestDeactivateBlocksLogin(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateUser(&CreateUserRequest{
		Email:     "former@example.com",
		Password:  "Crate2Dock",
		FirstName: "Former",
		LastName:  "Staff",
		Role:      RoleInventory,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := svc.DeactivateUser(created.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Email: "former@example.com", Password: "Crate2Dock"}); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected Forbidden for deactivated user, got %v", err)
	}

	if err := svc.ActivateUser(created.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Email: "former@example.com", Password: "Crate2Dock"}); err != nil {
		t.Fatalf("login after reactivation failed: %v", err)
	}
}

package service

import (
	"errors"
	"testing"

	"github.com/halomart/halomart/internal/config"
	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/repository"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *models.Admin) {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret-key-for-admin-jwt-001", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	svc := NewAuthService(cfg, repository.NewAdminRepository(db))

	hash, err := svc.HashPassword("admin-pass-123")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Username: "admin", PasswordHash: hash}
	if err := models.DB.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return svc, admin
}

func TestAdminLogin(t *testing.T) {
	svc, admin := setupAuthServiceTest(t)

	got, token, expiresAt, err := svc.Login("admin", "admin-pass-123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got.ID != admin.ID || token == "" || expiresAt.IsZero() {
		t.Fatalf("login result incomplete: id=%d token=%q", got.ID, token)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID {
		t.Fatalf("claims admin id want %d, got=%d", admin.ID, claims.AdminID)
	}

	if _, _, _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials, got=%v", err)
	}
	if _, _, _, err := svc.Login("ghost", "admin-pass-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown username want ErrInvalidCredentials, got=%v", err)
	}
}

func TestAdminChangePassword(t *testing.T) {
	svc, admin := setupAuthServiceTest(t)

	if err := svc.ChangePassword(admin.ID, "wrong", "new-pass-12345"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password want ErrInvalidPassword, got=%v", err)
	}
	if err := svc.ChangePassword(admin.ID, "admin-pass-123", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak new password want ErrWeakPassword, got=%v", err)
	}
	if err := svc.ChangePassword(admin.ID+100, "admin-pass-123", "new-pass-12345"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing admin want ErrNotFound, got=%v", err)
	}

	if err := svc.ChangePassword(admin.ID, "admin-pass-123", "new-pass-12345"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var stored models.Admin
	if err := models.DB.First(&stored, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if stored.TokenVersion != admin.TokenVersion+1 {
		t.Fatalf("token version must bump, got=%d", stored.TokenVersion)
	}
	if stored.TokenInvalidBefore == nil {
		t.Fatalf("token_invalid_before must be set")
	}

	if _, _, _, err := svc.Login("admin", "admin-pass-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got=%v", err)
	}
	if _, _, _, err := svc.Login("admin", "new-pass-12345"); err != nil {
		t.Fatalf("new password login failed: %v", err)
	}
}

package service

import (
	"errors"
	"testing"

	"github.com/halomart/halomart/internal/config"
	"github.com/halomart/halomart/internal/constants"
	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/repository"
)

func setupUserAuthServiceTest(t *testing.T) *UserAuthService {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{
		UserJWT: config.JWTConfig{SecretKey: "test-secret-key-for-user-jwt-0001", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	return NewUserAuthService(cfg, repository.NewUserRepository(db))
}

func TestUserRegisterNormalizesEmail(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	user, token, _, err := svc.Register("  Alice@Example.COM ", "password123", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email must be normalized, got=%q", user.Email)
	}
	if user.Name != "alice" {
		t.Fatalf("empty name must fall back to email local part, got=%q", user.Name)
	}
	if user.Status != constants.UserStatusActive {
		t.Fatalf("status want active, got=%q", user.Status)
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse issued token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("claims mismatch, got=%+v", claims)
	}

	// 大小写不同视作同一邮箱
	if _, _, _, err := svc.Register("ALICE@example.com", "password123", "Alice"); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists, got=%v", err)
	}
}

func TestUserRegisterRejectsBadInput(t *testing.T) {
	svc := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register("not-an-email", "password123", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email want ErrInvalidEmail, got=%v", err)
	}
	if _, _, _, err := svc.Register("", "password123", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("empty email want ErrInvalidEmail, got=%v", err)
	}
	if _, _, _, err := svc.Register("bob@example.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("short password want ErrWeakPassword, got=%v", err)
	}
}

func TestUserLogin(t *testing.T) {
	svc := setupUserAuthServiceTest(t)
	if _, _, _, err := svc.Register("alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, expiresAt, err := svc.Login("Alice@Example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("login must issue token")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("last_login_at must be set")
	}

	if _, _, _, err := svc.Login("alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials, got=%v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials, got=%v", err)
	}

	if err := models.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login("alice@example.com", "password123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user want ErrUserDisabled, got=%v", err)
	}
}

func TestUserChangePasswordBumpsTokenVersion(t *testing.T) {
	svc := setupUserAuthServiceTest(t)
	user, _, _, err := svc.Register("alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-password", "newpassword123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password want ErrInvalidPassword, got=%v", err)
	}
	if err := svc.ChangePassword(user.ID, "password123", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak new password want ErrWeakPassword, got=%v", err)
	}
	if err := svc.ChangePassword(user.ID+100, "password123", "newpassword123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user want ErrNotFound, got=%v", err)
	}

	if err := svc.ChangePassword(user.ID, "password123", "newpassword123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var stored models.User
	if err := models.DB.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if stored.TokenVersion != user.TokenVersion+1 {
		t.Fatalf("token version must bump, got=%d", stored.TokenVersion)
	}
	if stored.TokenInvalidBefore == nil {
		t.Fatalf("token_invalid_before must be set")
	}

	if _, _, _, err := svc.Login("alice@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got=%v", err)
	}
	if _, _, _, err := svc.Login("alice@example.com", "newpassword123"); err != nil {
		t.Fatalf("new password login failed: %v", err)
	}
}

func TestUserUpdateProfile(t *testing.T) {
	svc := setupUserAuthServiceTest(t)
	user, _, _, err := svc.Register("alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	name := "Alice Chen"
	locale := "zh"
	updated, err := svc.UpdateProfile(user.ID, &name, &locale)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Name != "Alice Chen" || updated.Locale != "zh" {
		t.Fatalf("profile not updated, got=%q/%q", updated.Name, updated.Locale)
	}

	// 空白值不覆盖已有字段
	blank := "   "
	kept, err := svc.UpdateProfile(user.ID, &blank, nil)
	if err != nil {
		t.Fatalf("update with blank name failed: %v", err)
	}
	if kept.Name != "Alice Chen" {
		t.Fatalf("blank name must not overwrite, got=%q", kept.Name)
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: " User@Example.COM ", want: "user@example.com"},
		{in: "user@example.com", want: "user@example.com"},
		{in: "", wantErr: true},
		{in: "not-an-email", wantErr: true},
		{in: "user@@example.com", wantErr: true},
	}
	for _, item := range cases {
		got, err := normalizeEmail(item.in)
		if item.wantErr {
			if !errors.Is(err, ErrInvalidEmail) {
				t.Fatalf("normalize %q want ErrInvalidEmail, got=%v", item.in, err)
			}
			continue
		}
		if err != nil || got != item.want {
			t.Fatalf("normalize %q want %q, got=%q err=%v", item.in, item.want, got, err)
		}
	}
}

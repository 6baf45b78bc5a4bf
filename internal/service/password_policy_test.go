package service

import (
	"errors"
	"testing"

	"github.com/halomart/halomart/internal/config"
)

func TestValidatePasswordEmptyPolicy(t *testing.T) {
	if err := validatePassword(config.PasswordPolicyConfig{}, "x"); err != nil {
		t.Fatalf("empty policy must accept anything, got=%v", err)
	}
}

func TestValidatePasswordRules(t *testing.T) {
	policy := config.PasswordPolicyConfig{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	cases := []struct {
		password string
		wantKey  string
	}{
		{password: "Ab1!", wantKey: "error.password_min_length"},
		{password: "abcdef1!x", wantKey: "error.password_require_upper"},
		{password: "ABCDEF1!X", wantKey: "error.password_require_lower"},
		{password: "Abcdefg!x", wantKey: "error.password_require_number"},
		{password: "Abcdefg1x", wantKey: "error.password_require_special"},
		{password: "Abcdef1!x", wantKey: ""},
	}
	for _, item := range cases {
		err := validatePassword(policy, item.password)
		if item.wantKey == "" {
			if err != nil {
				t.Fatalf("password %q must pass, got=%v", item.password, err)
			}
			continue
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("password %q want ErrWeakPassword, got=%v", item.password, err)
		}
		var policyErr passwordPolicyError
		if !errors.As(err, &policyErr) || policyErr.Key() != item.wantKey {
			t.Fatalf("password %q want key %q, got=%v", item.password, item.wantKey, err)
		}
	}
}

func TestValidatePasswordMinLengthArgs(t *testing.T) {
	err := validatePassword(config.PasswordPolicyConfig{MinLength: 10}, "short")
	var policyErr passwordPolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("want passwordPolicyError, got=%v", err)
	}
	args := policyErr.Args()
	if len(args) != 1 || args[0] != 10 {
		t.Fatalf("want args [10], got=%v", args)
	}
}

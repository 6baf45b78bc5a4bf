package service

import (
	"errors"
	"testing"

	"github.com/halomart/halomart/internal/config"
	"github.com/halomart/halomart/internal/constants"
)

func TestNormalizeCaptchaConfigDefaults(t *testing.T) {
	cfg := normalizeCaptchaConfig(config.CaptchaConfig{Provider: "  Image "})
	if cfg.Provider != constants.CaptchaProviderImage {
		t.Fatalf("provider want image, got=%q", cfg.Provider)
	}
	if cfg.Image.Length != 4 || cfg.Image.Width != 240 || cfg.Image.Height != 80 {
		t.Fatalf("image defaults not applied, got=%+v", cfg.Image)
	}
	if cfg.Image.ExpireSeconds != 300 || cfg.Image.MaxStore != 10240 {
		t.Fatalf("store defaults not applied, got=%+v", cfg.Image)
	}

	cfg = normalizeCaptchaConfig(config.CaptchaConfig{})
	if cfg.Provider != constants.CaptchaProviderNone {
		t.Fatalf("empty provider want none, got=%q", cfg.Provider)
	}
}

func TestCaptchaSceneToggles(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderImage,
		Scenes:   config.CaptchaSceneConfig{AdminLogin: true},
	})
	if !svc.IsSceneEnabled(constants.CaptchaSceneAdminLogin) {
		t.Fatalf("admin login scene must be enabled")
	}
	if svc.IsSceneEnabled(constants.CaptchaSceneLogin) {
		t.Fatalf("login scene must stay disabled")
	}
	if svc.IsSceneEnabled("unknown") {
		t.Fatalf("unknown scene must be disabled")
	}

	disabled := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderNone,
		Scenes:   config.CaptchaSceneConfig{AdminLogin: true, Login: true},
	})
	if disabled.IsSceneEnabled(constants.CaptchaSceneAdminLogin) {
		t.Fatalf("provider none must disable all scenes")
	}
}

func TestCaptchaVerify(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderImage,
		Scenes:   config.CaptchaSceneConfig{AdminLogin: true},
	})

	// 未开启的场景直接放行
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled scene must pass, got=%v", err)
	}

	if err := svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("empty payload want ErrCaptchaRequired, got=%v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: "nope", CaptchaCode: "1234"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("unknown challenge want ErrCaptchaInvalid, got=%v", err)
	}
}

func TestCaptchaGenerateImageChallenge(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderImage,
		Scenes:   config.CaptchaSceneConfig{AdminLogin: true},
	})
	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate challenge failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("challenge fields must be populated, got=%+v", challenge)
	}

	none := NewCaptchaService(config.CaptchaConfig{})
	if _, err := none.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("provider none want ErrCaptchaConfigInvalid, got=%v", err)
	}
}

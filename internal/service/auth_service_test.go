package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tutorbook/notifications/config"
	"tutorbook/notifications/pkg/jwt"
)

// ── Verify 测试 ──

func TestAuthService_Verify_Success(t *testing.T) {
	env := newTestEnv(1)

	claims, err := env.svc.Auth.Verify(context.Background(), env.token("sup@tutorbook.app", true))
	if err != nil {
		t.Fatalf("Verify 失败: %v", err)
	}
	if claims.Email != "sup@tutorbook.app" || !claims.Supervisor {
		t.Errorf("声明不符: %+v", claims)
	}
}

func TestAuthService_Verify_MissingToken(t *testing.T) {
	env := newTestEnv(1)

	_, err := env.svc.Auth.Verify(context.Background(), "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("期望 ErrUnauthorized，实际: %v", err)
	}
}

func TestAuthService_Verify_Garbage(t *testing.T) {
	env := newTestEnv(1)

	_, err := env.svc.Auth.Verify(context.Background(), "not-a-token")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("期望 ErrUnauthorized，实际: %v", err)
	}
}

func TestAuthService_Verify_Expired(t *testing.T) {
	expired := jwt.NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:  -time.Minute,
		Issuer:    "tutorbook",
	})
	tok, _ := expired.GenerateIDToken("sup@tutorbook.app", true)

	env := newTestEnv(1)
	if _, err := env.svc.Auth.Verify(context.Background(), tok); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("期望 ErrUnauthorized，实际: %v", err)
	}
}

func TestAuthService_Verify_RevocationStoreDownDegradesOpen(t *testing.T) {
	env := newTestEnv(1)
	env.revoked.err = errors.New("redis: connection refused")

	if _, err := env.svc.Auth.Verify(context.Background(), env.token("sup@tutorbook.app", true)); err != nil {
		t.Errorf("吊销名单不可用时应放行，实际: %v", err)
	}
}

// ── Revoke 测试 ──

func TestAuthService_Revoke_ThenVerifyFails(t *testing.T) {
	env := newTestEnv(1)
	ctx := context.Background()
	tok := env.token("sup@tutorbook.app", true)

	if err := env.svc.Auth.Revoke(ctx, tok); err != nil {
		t.Fatalf("Revoke 失败: %v", err)
	}
	if len(env.revoked.revoked) != 1 {
		t.Fatalf("期望记录 1 个吊销，实际 %d", len(env.revoked.revoked))
	}
	for _, ttl := range env.revoked.revoked {
		if ttl <= 0 || ttl > 15*time.Minute {
			t.Errorf("吊销 TTL 应为剩余有效期，实际 %v", ttl)
		}
	}

	if _, err := env.svc.Auth.Verify(ctx, tok); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("吊销后期望 ErrUnauthorized，实际: %v", err)
	}
}

func TestAuthService_Revoke_InvalidToken(t *testing.T) {
	env := newTestEnv(1)

	if err := env.svc.Auth.Revoke(context.Background(), "bogus"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("期望 ErrUnauthorized，实际: %v", err)
	}
	if len(env.revoked.revoked) != 0 {
		t.Error("无效凭证不应写入吊销名单")
	}
}

func TestAuthService_Revoke_NoStore(t *testing.T) {
	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing-2026", TokenTTL: time.Minute})
	svc := NewAuthService(mgr, nil, zap.NewNop())
	tok, _ := mgr.GenerateIDToken("sup@tutorbook.app", true)

	if _, err := svc.Verify(context.Background(), tok); err != nil {
		t.Fatalf("无吊销名单时 Verify 应成功: %v", err)
	}
	if err := svc.Revoke(context.Background(), tok); !errors.Is(err, ErrRevocationUnavailable) {
		t.Errorf("期望 ErrRevocationUnavailable，实际: %v", err)
	}
}

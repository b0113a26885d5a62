package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidatePair(t *testing.T) {
	tokens := NewTokens("test-secret", 0, 0)

	pair, err := tokens.GeneratePair(42, "customer")
	if err != nil {
		t.Fatalf("GeneratePair failed: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("expected both tokens to be issued")
	}

	access, err := tokens.Validate(pair.Access, TokenTypeAccess)
	if err != nil {
		t.Fatalf("access validation failed: %v", err)
	}
	if access.UserID != 42 {
		t.Errorf("expected user 42, got %d", access.UserID)
	}
	if access.Role != "customer" {
		t.Errorf("expected role customer, got %q", access.Role)
	}
	if access.ID == "" {
		t.Error("expected a jti on the access token")
	}

	refresh, err := tokens.Validate(pair.Refresh, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("refresh validation failed: %v", err)
	}
	if refresh.ID == access.ID {
		t.Error("access and refresh tokens must not share a jti")
	}
}

func TestValidateRejectsWrongType(t *testing.T) {
	tokens := NewTokens("test-secret", 0, 0)
	pair, err := tokens.GeneratePair(1, "customer")
	if err != nil {
		t.Fatalf("GeneratePair failed: %v", err)
	}

	if _, err := tokens.Validate(pair.Refresh, TokenTypeAccess); !errors.Is(err, ErrWrongTokenUse) {
		t.Errorf("expected ErrWrongTokenUse for refresh-as-access, got %v", err)
	}
	if _, err := tokens.Validate(pair.Access, TokenTypeRefresh); !errors.Is(err, ErrWrongTokenUse) {
		t.Errorf("expected ErrWrongTokenUse for access-as-refresh, got %v", err)
	}
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	expired := NewTokens("test-secret", -time.Minute, -time.Minute)
	pair, err := expired.GeneratePair(1, "customer")
	if err != nil {
		t.Fatalf("GeneratePair failed: %v", err)
	}
	if _, err := expired.Validate(pair.Access, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}

	other := NewTokens("another-secret", 0, 0)
	good := NewTokens("test-secret", 0, 0)
	pair, err = other.GeneratePair(1, "customer")
	if err != nil {
		t.Fatalf("GeneratePair failed: %v", err)
	}
	if _, err := good.Validate(pair.Access, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestMemoryBlacklist(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("unknown jti reported as revoked")
	}

	if err := bl.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	revoked, _ = bl.IsRevoked(ctx, "jti-1")
	if !revoked {
		t.Error("revoked jti not reported as revoked")
	}

	// A TTL in the past behaves like an already-expired token.
	if err := bl.Revoke(ctx, "jti-2", -time.Second); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	revoked, _ = bl.IsRevoked(ctx, "jti-2")
	if revoked {
		t.Error("expired blacklist entry still reported as revoked")
	}
}

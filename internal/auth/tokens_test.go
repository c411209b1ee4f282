package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTokenManager(t *testing.T, clock func() time.Time) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("test-signing-secret"),
		Issuer:        "carbontrack-test",
		TokenTTL:      time.Hour,
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return manager
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	manager := newTestTokenManager(t, nil)

	token, expiresIn, err := manager.Issue("manager@gmail.com", RoleManager)
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	if expiresIn != 3600 {
		t.Fatalf("expected 3600 seconds validity, got %d", expiresIn)
	}

	email, role, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
	if email != "manager@gmail.com" || role != RoleManager {
		t.Fatalf("unexpected claims: email=%q role=%q", email, role)
	}
}

func TestIssueRequiresEmail(t *testing.T) {
	manager := newTestTokenManager(t, nil)
	if _, _, err := manager.Issue("  ", RoleAdmin); err == nil {
		t.Fatalf("expected error for blank subject")
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	manager := newTestTokenManager(t, nil)

	token, _, err := manager.Issue("employee@gmail.com", RoleEmployee)
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-part token, got %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, _, err := manager.Validate(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuing := newTestTokenManager(t, nil)
	validating, err := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("a-different-secret"),
		Issuer:        "carbontrack-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, _, err := issuing.Issue("employee@gmail.com", RoleEmployee)
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	if _, _, err := validating.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	current := time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC)
	manager := newTestTokenManager(t, func() time.Time { return current })

	token, _, err := manager.Issue("employee@gmail.com", RoleEmployee)
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if _, _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	issuing, err := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("test-signing-secret"),
		Issuer:        "someone-else",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	validating := newTestTokenManager(t, nil)

	token, _, err := issuing.Issue("employee@gmail.com", RoleEmployee)
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	if _, _, err := validating.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}

package auth

import (
	"errors"
	"testing"
)

func testDirectory() *Directory {
	return NewDirectory([]User{
		{Email: "admin@gmail.com", Password: "Admin@123", Role: RoleAdmin},
		{Email: "Manager@Gmail.com", Password: "manager-pass", Role: RoleManager},
		{Email: "employee@gmail.com", Password: "employee-pass"},
	})
}

func TestAuthenticateKnownUser(t *testing.T) {
	directory := testDirectory()

	role, err := directory.Authenticate("admin@gmail.com", "Admin@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("expected Admin role, got %q", role)
	}
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	directory := testDirectory()

	role, err := directory.Authenticate("  MANAGER@gmail.com ", "manager-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != RoleManager {
		t.Fatalf("expected Manager role, got %q", role)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	directory := testDirectory()

	if _, err := directory.Authenticate("admin@gmail.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := directory.Authenticate("nobody@gmail.com", "Admin@123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestDefaultRoleIsEmployee(t *testing.T) {
	directory := testDirectory()

	role, err := directory.Authenticate("employee@gmail.com", "employee-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != RoleEmployee {
		t.Fatalf("expected Employee role, got %q", role)
	}
	if got := directory.RoleOf("stranger@gmail.com"); got != RoleEmployee {
		t.Fatalf("expected unknown identities to default to Employee, got %q", got)
	}
}

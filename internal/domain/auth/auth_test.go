package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(secret, Claims{
		UserID:   "u1",
		TenantID: "t1",
		RoleID:   "r1",
		RoleName: RoleDefender,
	}, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.UserID != "u1" || parsed.TenantID != "t1" || parsed.RoleName != RoleDefender {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestRolePermissionsCoverDefaults(t *testing.T) {
	known := map[string]bool{}
	for _, perm := range DefaultPermissions {
		known[perm] = true
	}
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if !known[perm] {
				t.Fatalf("role %s grants unknown permission %s", role, perm)
			}
		}
	}
}

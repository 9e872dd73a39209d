package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	ident := Identity{
		UserID:    uuid.New(),
		ProfileID: uuid.New(),
		Role:      "expert",
	}

	token, err := GenerateJWT("test-secret", ident, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT("test-secret", token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}

	if claims.UserID != ident.UserID || claims.ProfileID != ident.ProfileID || claims.Role != ident.Role {
		t.Errorf("claims mismatch: got %+v, want %+v", claims, ident)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("test-secret", Identity{UserID: uuid.New(), ProfileID: uuid.New(), Role: "buyer"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT("other-secret", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	token, err := GenerateJWT("test-secret", Identity{UserID: uuid.New(), ProfileID: uuid.New(), Role: "buyer"}, time.Nanosecond)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := ParseJWT("test-secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestIdentityIsAdmin(t *testing.T) {
	if (Identity{Role: "buyer"}).IsAdmin() || (Identity{Role: "expert"}).IsAdmin() {
		t.Error("non-admin roles must not be admin")
	}
	if !(Identity{Role: "admin"}).IsAdmin() {
		t.Error("admin role must be admin")
	}
}

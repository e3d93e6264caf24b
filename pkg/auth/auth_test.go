package auth

import (
	"testing"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("w-a", models.RoleEmployee)
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.WorkerID != "w-a" || claims.Role != models.RoleEmployee {
		t.Errorf("Claims mismatch: %+v", claims)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	if _, err := VerifyToken("not.a.token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestHMACKeyRoundTrip(t *testing.T) {
	key := GenerateHMACKey("client-1")

	userID, err := VerifyHMACKey(key)
	if err != nil {
		t.Fatalf("VerifyHMACKey failed: %v", err)
	}
	if userID != "client-1" {
		t.Errorf("Expected client-1, got %s", userID)
	}

	if _, err := VerifyHMACKey("client-1.deadbeef"); err == nil {
		t.Error("Expected error for forged signature")
	}
	if _, err := VerifyHMACKey("noseparator"); err == nil {
		t.Error("Expected error for malformed key")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("hunter2", hash) {
		t.Error("Expected matching password to verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("Expected wrong password to fail")
	}
}

package utils

import (
	"testing"
)

const testJWTSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user1", "parent@example.com", "parent", testJWTSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := ValidateToken(token, testJWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user1" {
		t.Errorf("UserID = %v, want user1", claims.UserID)
	}
	if claims.Email != "parent@example.com" {
		t.Errorf("Email = %v, want parent@example.com", claims.Email)
	}
	if claims.Role != "parent" {
		t.Errorf("Role = %v, want parent", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user1", "parent@example.com", "parent", testJWTSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Error("ValidateToken() should fail with a wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token", testJWTSecret); err == nil {
		t.Error("ValidateToken() should fail on garbage input")
	}
}

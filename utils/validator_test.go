package utils

import (
	"errors"
	"testing"
)

type sampleRequest struct {
	Title  string `validate:"required"`
	Target string `validate:"required,oneof=all parents teachers individual"`
}

func TestValidateStructOK(t *testing.T) {
	req := sampleRequest{Title: "Izlet", Target: "parents"}
	if err := ValidateStruct(req); err != nil {
		t.Errorf("ValidateStruct() error = %v, want nil", err)
	}
}

func TestValidateStructMissingField(t *testing.T) {
	req := sampleRequest{Target: "parents"}
	err := ValidateStruct(req)
	if err == nil {
		t.Fatal("ValidateStruct() should fail on missing Title")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if ve.Field != "Title" {
		t.Errorf("Field = %v, want Title", ve.Field)
	}
}

func TestValidateStructBadTarget(t *testing.T) {
	req := sampleRequest{Title: "Izlet", Target: "everyone"}
	err := ValidateStruct(req)
	if err == nil {
		t.Fatal("ValidateStruct() should fail on bad target")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("lozinka123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPassword(hash, "lozinka123") {
		t.Error("CheckPassword() = false for the right password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword() = true for a wrong password")
	}
}

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys() error = %v", err)
	}
	if pub == "" || priv == "" {
		t.Error("GenerateVAPIDKeys() returned empty keys")
	}
	if pub == priv {
		t.Error("public and private keys should differ")
	}
}

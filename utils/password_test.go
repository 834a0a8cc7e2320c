package utils

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "secret1" {
		t.Fatal("password stored in clear text")
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != PasswordCost {
		t.Errorf("cost = %d, want %d", cost, PasswordCost)
	}

	// salted: same input, different hash
	again, _ := HashPassword("secret1")
	if again == hash {
		t.Error("expected a fresh salt per hash")
	}

	tests := []struct {
		name string
		hash string
		raw  string
		want bool
	}{
		{"match", hash, "secret1", true},
		{"wrong password", hash, "secret2", false},
		{"empty hash", "", "secret1", false},
		{"garbage hash", "not-a-hash", "secret1", false},
		{"too long", hash, "secret1" + strings.Repeat("x", 80), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.hash, tt.raw); got != tt.want {
				t.Errorf("CheckPassword = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashPasswordRejectsLongInput(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("a", 72)); err != nil {
		t.Errorf("72 bytes rejected: %v", err)
	}
}

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestVerifyRoundTrip(t *testing.T) {
	v, err := NewVerifier("unit-test-secret", "bilancio-test")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token, err := v.Sign("user-42", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	userID, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("user id = %q, want user-42", userID)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	v, _ := NewVerifier("unit-test-secret", "")
	token, err := v.Sign("user-42", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, ErrBadToken) {
		t.Errorf("expired token: err = %v, want ErrBadToken", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewVerifier("secret-a", "")
	verifier, _ := NewVerifier("secret-b", "")

	token, err := issuer.Sign("user-42", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrBadToken) {
		t.Errorf("wrong secret: err = %v, want ErrBadToken", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	a, _ := NewVerifier("unit-test-secret", "issuer-a")
	b, _ := NewVerifier("unit-test-secret", "issuer-b")

	token, err := a.Sign("user-42", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := b.Verify(token); !errors.Is(err, ErrBadToken) {
		t.Errorf("wrong issuer: err = %v, want ErrBadToken", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"case insensitive scheme", "bearer tok", "tok", true},
		{"empty", "", "", false},
		{"no scheme", "abc.def.ghi", "", false},
		{"wrong scheme", "Basic dXNlcg==", "", false},
		{"scheme only", "Bearer ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("got (%q, %v), want (%q, nil)", got, err, tt.want)
				}
			} else if err == nil {
				t.Errorf("expected error for %q", tt.header)
			}
		})
	}
}

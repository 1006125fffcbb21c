package identity

import (
	"errors"
	"testing"
	"time"
)

func TestVerifier_ValidSignature(t *testing.T) {
	v := NewVerifier("whsec_test")
	body := []byte(`{"type":"created","data":{"id":"ext_1"}}`)

	header := v.Sign(body, time.Now())

	if err := v.Verify(header, body); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifier_WrongSecret(t *testing.T) {
	body := []byte(`{"type":"created"}`)
	header := NewVerifier("secret-a").Sign(body, time.Now())

	err := NewVerifier("secret-b").Verify(header, body)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifier_TamperedBody(t *testing.T) {
	v := NewVerifier("whsec_test")
	header := v.Sign([]byte(`{"type":"created"}`), time.Now())

	err := v.Verify(header, []byte(`{"type":"deleted"}`))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifier_ReplayWindow(t *testing.T) {
	v := NewVerifier("whsec_test")
	body := []byte(`{}`)

	header := v.Sign(body, time.Now().Add(-10*time.Minute))

	err := v.Verify(header, body)
	if !errors.Is(err, ErrReplayWindowExceeded) {
		t.Errorf("expected ErrReplayWindowExceeded, got %v", err)
	}
}

func TestVerifier_MalformedHeader(t *testing.T) {
	v := NewVerifier("whsec_test")

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"empty", "", ErrMissingSignature},
		{"no parts", "garbage", ErrMalformedSignature},
		{"missing v1", "t=1705142400", ErrMalformedSignature},
		{"missing t", "v1=abcdef", ErrMalformedSignature},
		{"non numeric timestamp", "t=now,v1=abcdef", ErrMalformedSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.header, []byte(`{}`))
			if !errors.Is(err, tt.want) {
				t.Errorf("Verify(%q) = %v, want %v", tt.header, err, tt.want)
			}
		})
	}
}

func TestVerifier_Enabled(t *testing.T) {
	if NewVerifier("").Enabled() {
		t.Error("empty secret should disable verification")
	}
	if !NewVerifier("whsec_test").Enabled() {
		t.Error("non-empty secret should enable verification")
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidator_Required(t *testing.T) {
	v := NewValidator()
	v.ValidateRequired("A", "")
	v.ValidateRequired("B", "set")

	if len(v.Errors()) != 1 || v.Errors()[0].Field != "A" {
		t.Fatalf("Errors() = %+v, want one error for A", v.Errors())
	}
}

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"", true},
		{"http://hooks.example.com/lead", true},
		{"https://hooks.example.com", true},
		{"ftp://example.com", false},
		{"://broken", false},
	}
	for _, tt := range tests {
		v := NewValidator()
		v.ValidateURL("U", tt.value)
		if v.HasErrors() == tt.ok {
			t.Errorf("ValidateURL(%q) errors = %v, want ok=%v", tt.value, v.Errors(), tt.ok)
		}
	}
}

func TestValidator_Addr(t *testing.T) {
	for _, ok := range []string{":8000", "0.0.0.0:80", "[::1]:8080", "localhost:65535"} {
		v := NewValidator()
		v.ValidateAddr("ADDR", ok)
		if v.HasErrors() {
			t.Errorf("ValidateAddr(%q) = %v", ok, v.Errors())
		}
	}
	for _, bad := range []string{"8000", ":0", ":http", "host:70000"} {
		v := NewValidator()
		v.ValidateAddr("ADDR", bad)
		if !v.HasErrors() {
			t.Errorf("ValidateAddr(%q) accepted", bad)
		}
	}
}

func TestValidator_Int(t *testing.T) {
	v := NewValidator()
	if got := v.Int("N", "", 5, 0); got != 5 {
		t.Errorf("empty = %d, want default", got)
	}
	if got := v.Int("N", "12", 5, 0); got != 12 {
		t.Errorf("12 = %d", got)
	}
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}

	if got := v.Int("N", "abc", 5, 0); got != 5 {
		t.Errorf("abc = %d, want default", got)
	}
	if got := v.Int("N", "-3", 5, 0); got != 5 {
		t.Errorf("-3 = %d, want default", got)
	}
	if len(v.Errors()) != 2 {
		t.Errorf("Errors() = %v, want 2", v.Errors())
	}
}

func TestValidator_Duration(t *testing.T) {
	v := NewValidator()
	if got := v.Duration("D", "90m", time.Hour); got != 90*time.Minute {
		t.Errorf("90m = %v", got)
	}
	if got := v.Duration("D", "-1h", time.Hour); got != time.Hour {
		t.Errorf("-1h = %v, want default", got)
	}
	if len(v.Errors()) != 1 {
		t.Errorf("Errors() = %v, want 1", v.Errors())
	}
}

func TestValidator_Bool(t *testing.T) {
	v := NewValidator()
	for in, want := range map[string]bool{"": true, "TRUE": true, "1": true, "no": false, "false": false} {
		if got := v.Bool("B", in, true); got != want {
			t.Errorf("Bool(%q) = %v, want %v", in, got, want)
		}
	}
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}
}

func TestValidator_Err(t *testing.T) {
	v := NewValidator()
	if v.Err() != nil {
		t.Fatal("Err() on empty validator should be nil")
	}
	v.AddError("X", "bad")
	err := v.Err()
	if err == nil || !strings.Contains(err.Error(), "config validation failed for X: bad") {
		t.Errorf("Err() = %v", err)
	}
}

package submission

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "object", body: `{"name":"Alice","phone":"555"}`},
		{name: "empty object", body: `{}`},
		{name: "surrounding whitespace", body: "  \n{\"a\":1}\n "},
		{name: "not json", body: `not json`, wantErr: ErrInvalidJSON},
		{name: "empty body", body: ``, wantErr: ErrInvalidJSON},
		{name: "truncated object", body: `{"name":`, wantErr: ErrInvalidJSON},
		{name: "trailing data", body: `{"a":1} {"b":2}`, wantErr: ErrInvalidJSON},
		{name: "trailing garbage", body: `{"a":1}x`, wantErr: ErrInvalidJSON},
		{name: "invalid utf-8", body: "{\"name\":\"\xff\xfe\"}", wantErr: ErrInvalidJSON},
		{name: "array", body: `[{"name":"Alice"}]`, wantErr: ErrNotObject},
		{name: "number", body: `42`, wantErr: ErrNotObject},
		{name: "string", body: `"hello"`, wantErr: ErrNotObject},
		{name: "null", body: `null`, wantErr: ErrNotObject},
		{name: "boolean", body: `true`, wantErr: ErrNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := Decode([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode(%q) error = %v, want %v", tt.body, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tt.body, err)
			}
			if sub == nil {
				t.Fatalf("Decode(%q) returned nil submission", tt.body)
			}
		})
	}
}

func TestDecode_PreservesNumbers(t *testing.T) {
	sub, err := Decode([]byte(`{"budget":12345678901234567890,"ratio":0.10}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := sub["budget"]; got != json.Number("12345678901234567890") {
		t.Errorf("budget = %#v, want json.Number", got)
	}

	out, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `{"budget":12345678901234567890,"ratio":0.10}`; string(out) != want {
		t.Errorf("re-encoded = %s, want %s", out, want)
	}
}

func TestSubmissionName(t *testing.T) {
	tests := []struct {
		sub  Submission
		want string
	}{
		{Submission{"name": "Alice"}, "Alice"},
		{Submission{"email": "a@example.com"}, UnknownSubmitter},
		{Submission{"name": nil}, UnknownSubmitter},
		{Submission{"name": json.Number("7")}, "7"},
		{Submission{"name": ""}, ""},
	}
	for _, tt := range tests {
		if got := tt.sub.Name(); got != tt.want {
			t.Errorf("Name() of %v = %q, want %q", tt.sub, got, tt.want)
		}
	}
}

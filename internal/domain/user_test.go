package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestUIDValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1234567890", true},
		{"0000000000", true},
		{"123456789", false},
		{"12345678901", false},
		{"12345abcde", false},
		{"", false},
		{"١٢٣٤٥٦٧٨٩٠", false},
	}
	for _, tt := range tests {
		if got := UID(tt.in).Valid(); got != tt.want {
			t.Errorf("UID(%q).Valid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseUID(t *testing.T) {
	u, err := ParseUID("1234567890")
	if err != nil {
		t.Fatalf("ParseUID: %v", err)
	}
	if u != "1234567890" {
		t.Fatalf("got %q", u)
	}
	for _, raw := range []string{"abc", " 2222222222\n", " 1234567890", "1234567890 ", "\t1234567890"} {
		if _, err := ParseUID(raw); !errors.Is(err, ErrInvalidUID) {
			t.Errorf("ParseUID(%q): expected ErrInvalidUID, got %v", raw, err)
		}
	}
}

func TestNewUser(t *testing.T) {
	if _, err := NewUser("1234567890", "Alice"); err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if _, err := NewUser("12", "Alice"); !errors.Is(err, ErrInvalidUID) {
		t.Fatalf("expected ErrInvalidUID, got %v", err)
	}
	long := strings.Repeat("x", MaxDisplayNameLen+1)
	if _, err := NewUser("1234567890", long); !errors.Is(err, ErrDisplayNameLong) {
		t.Fatalf("expected ErrDisplayNameLong, got %v", err)
	}
}

func TestParseMediaKind(t *testing.T) {
	if k, ok := ParseMediaKind(""); !ok || k != MediaVideo {
		t.Fatalf("empty kind: got %q %v", k, ok)
	}
	if k, ok := ParseMediaKind("audio"); !ok || k != MediaAudio {
		t.Fatalf("audio: got %q %v", k, ok)
	}
	if _, ok := ParseMediaKind("screen"); ok {
		t.Fatal("screen must be rejected")
	}
}

func TestPresenceStatusValid(t *testing.T) {
	for _, s := range []PresenceStatus{PresenceOnline, PresenceOffline, PresenceBusy} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if PresenceStatus("away").Valid() {
		t.Error("away should be invalid")
	}
}

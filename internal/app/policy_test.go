package app

import "testing"

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name string
		want BackpressureAction
	}{
		{"", KickMember},
		{"kick", KickMember},
		{"drop", DropFrame},
	}
	for _, tt := range tests {
		p, err := NewPolicy(tt.name)
		if err != nil {
			t.Fatalf("NewPolicy(%q): %v", tt.name, err)
		}
		if got := p.OnBackPressure(alice.UID, &stubConn{}); got != tt.want {
			t.Errorf("NewPolicy(%q) action = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, err := NewPolicy("block"); err == nil {
		t.Fatal("unknown policy accepted")
	}
}

package debugserver

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in     string
		kind   AddressKind
		target string
	}{
		{"unix:///tmp/app.sock", AddressPath, "/tmp/app.sock"},
		{"/var/run/app.sock", AddressPath, "/var/run/app.sock"},
		{"app.sock", AddressPath, "app.sock"},
		{"tcp://127.0.0.1:9000", AddressTCP, "127.0.0.1:9000"},
		{"localhost:7000", AddressTCP, "localhost:7000"},
		{"[::1]:7000", AddressTCP, "[::1]:7000"},
		{"my-editor", AddressName, SocketPath("my-editor")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			addr, err := ParseAddress(tt.in)
			if err != nil {
				t.Fatalf("ParseAddress(%q) error: %v", tt.in, err)
			}
			if addr.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", addr.Kind, tt.kind)
			}
			if got := addr.Target(); got != tt.target {
				t.Errorf("Target() = %q, want %q", got, tt.target)
			}
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "unix://", "tcp://localhost", "host:notaport", "tcp://host:70000"} {
		if _, err := ParseAddress(in); err == nil {
			t.Errorf("ParseAddress(%q) should fail", in)
		}
	}
}

func TestSocketPath_Deterministic(t *testing.T) {
	a := SocketPath("My App/v2")
	b := SocketPath("My App/v2")
	if a != b {
		t.Errorf("SocketPath not deterministic: %q vs %q", a, b)
	}
	if filepath.Dir(a) != SocketDir {
		t.Errorf("SocketPath dir = %q, want %q", filepath.Dir(a), SocketDir)
	}
	if base := filepath.Base(a); strings.ContainsAny(base, " /") || base != "My-App-v2.sock" {
		t.Errorf("SocketPath base = %q", base)
	}
	if SocketPath("") != filepath.Join(SocketDir, "app.sock") {
		t.Errorf("empty name should map to app.sock")
	}
}

func TestAddress_Network(t *testing.T) {
	if NameAddress("x").Network() != "unix" || PathAddress("/x").Network() != "unix" {
		t.Error("name and path addresses use unix sockets")
	}
	if got := TCPAddress("127.0.0.1", 80).String(); got != "tcp://127.0.0.1:80" {
		t.Errorf("String() = %q", got)
	}
}

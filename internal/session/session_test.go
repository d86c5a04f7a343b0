package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestNewTokenIsPathElement(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		tok := NewToken()
		if !strings.HasPrefix(tok, tokenPrefix) {
			t.Fatalf("token %q lacks prefix", tok)
		}
		if !dbus.ObjectPath("/t/" + tok).IsValid() {
			t.Fatalf("token %q is not a valid path element", tok)
		}
		seen[tok] = true
	}
	if len(seen) < 2 {
		t.Error("tokens are not random")
	}
}

func TestGenerateTokenSignature(t *testing.T) {
	v := GenerateToken()
	if v.Signature().String() != "s" {
		t.Errorf("signature = %q, want s", v.Signature().String())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNewTokenFallsBackWhenRandomFails(t *testing.T) {
	orig := tokenSource
	tokenSource = failingReader{}
	defer func() { tokenSource = orig }()

	first, second := NewToken(), NewToken()
	if first == second {
		t.Errorf("fallback tokens repeat: %q", first)
	}
	for _, tok := range []string{first, second} {
		if !strings.HasPrefix(tok, tokenPrefix) || !dbus.ObjectPath("/t/"+tok).IsValid() {
			t.Errorf("fallback token %q is not a valid path element", tok)
		}
	}
}

package keys

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRejectsReserved(t *testing.T) {
	for _, r := range Reserved {
		key := "a" + string(r) + "b"
		err := Validate(key)
		if !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Validate(%q) err=%v want ErrInvalidKey", key, err)
		}
		var ke *KeyError
		if !errors.As(err, &ke) || ke.Key != key {
			t.Fatalf("Validate(%q) expected KeyError carrying the key, got %v", key, err)
		}
	}
}

func TestValidateAcceptsPlainKeys(t *testing.T) {
	for _, k := range []string{"a", "user.42", "user-42_x", "ümlaut", "with space"} {
		if err := Validate(k); err != nil {
			t.Fatalf("Validate(%q)=%v", k, err)
		}
	}
}

func TestValidateEmpty(t *testing.T) {
	if err := Validate(""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("empty key err=%v", err)
	}
}

func TestValidateAllStopsAtFirst(t *testing.T) {
	err := ValidateAll([]string{"ok", "bad:one", "bad{two"})
	var ke *KeyError
	if !errors.As(err, &ke) || ke.Key != "bad:one" {
		t.Fatalf("err=%v want KeyError for bad:one", err)
	}
}

func TestSaltLayout(t *testing.T) {
	s := Salter{Prefix: "mcp-cache-1"}
	cases := []struct {
		name   string
		key    string
		suffix string
		gen    uint64
		want   string
	}{
		{"plain", "foo", "", 0, "mcp-cache-1:foo"},
		{"gen", "foo", "", 3, "mcp-cache-1:foo:3"},
		{"suffix", "foo", "deploy7", 0, "mcp-cache-1:foo:deploy7"},
		{"both", "foo", "deploy7", 3, "mcp-cache-1:foo:3:deploy7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Salt(tc.key, tc.suffix, tc.gen); got != tc.want {
				t.Fatalf("Salt=%q want %q", got, tc.want)
			}
		})
	}
}

func TestSaltNoPrefixCustomDelimiter(t *testing.T) {
	s := Salter{Delimiter: "-"}
	if got := s.Salt("foo", "bar", 0); got != "foo-bar" {
		t.Fatalf("Salt=%q", got)
	}
}

func TestSaltDeterministicAndDistinct(t *testing.T) {
	s := Salter{Prefix: "p"}
	a := s.Salt("foo", "", 0)
	if a != s.Salt("foo", "", 0) {
		t.Fatalf("salt not stable")
	}
	if a == s.Salt("foo", "x", 0) {
		t.Fatalf("suffix did not change key")
	}
	if a == s.Salt("foo", "", 2) {
		t.Fatalf("generation did not change key")
	}
	if s.Salt("foo", "", 1) == s.Salt("foo", "", 2) {
		t.Fatalf("distinct generations collided")
	}
}

func TestSaltMaxLengthFoldsKey(t *testing.T) {
	s := Salter{Prefix: "p", MaxLength: 40}
	long := strings.Repeat("k", 100)
	got := s.Salt(long, "sfx", 2)
	if len(got) > 40 {
		t.Fatalf("len=%d exceeds cap: %q", len(got), got)
	}
	if !strings.HasPrefix(got, "p:") || !strings.HasSuffix(got, ":2:sfx") {
		t.Fatalf("layout lost when folding: %q", got)
	}
	if got != s.Salt(long, "sfx", 2) {
		t.Fatalf("folded key not stable")
	}
	if short := s.Salt("k", "sfx", 2); short != "p:k:2:sfx" {
		t.Fatalf("short key should not fold: %q", short)
	}
}

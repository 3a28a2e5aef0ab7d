package util

import "testing"

func TestDigestStableAndShort(t *testing.T) {
	a := Digest("user:42")
	if len(a) != 16 {
		t.Fatalf("len=%d want 16", len(a))
	}
	if a != Digest("user:42") {
		t.Fatalf("digest not stable")
	}
	if a == Digest("user:43") {
		t.Fatalf("distinct inputs produced same digest")
	}
}

package clock

import (
	"testing"
	"time"
)

func TestManualSetAndAdvance(t *testing.T) {
	start := time.Date(2015, 8, 15, 12, 0, 0, 0, time.UTC)
	m := NewManual(start)

	if got := m.Now(); !got.Equal(start) {
		t.Fatalf("Now=%v want %v", got, start)
	}
	if got := m.Advance(45 * time.Second); !got.Equal(start.Add(45 * time.Second)) {
		t.Fatalf("Advance=%v", got)
	}
	m.Set(start)
	if got := m.Now(); !got.Equal(start) {
		t.Fatalf("Set: Now=%v want %v", got, start)
	}
}

func TestSystemIsUTC(t *testing.T) {
	if loc := (System{}).Now().Location(); loc != time.UTC {
		t.Fatalf("System clock location=%v want UTC", loc)
	}
}

func TestFunc(t *testing.T) {
	fixed := time.Unix(100, 0)
	var c Clock = Func(func() time.Time { return fixed })
	if !c.Now().Equal(fixed) {
		t.Fatalf("Func clock did not return fixed time")
	}
}

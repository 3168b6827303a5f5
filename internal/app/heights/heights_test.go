package heights

import (
	"testing"
	"time"
)

func TestManualNeverMovesBackwards(t *testing.T) {
	m := NewManual(10)
	m.Set(5)
	if got := m.Current(); got != 10 {
		t.Fatalf("height regressed to %d", got)
	}
	m.Set(20)
	if got := m.Current(); got != 20 {
		t.Fatalf("height = %d, want 20", got)
	}
	m.Advance(3)
	if got := m.Current(); got != 23 {
		t.Fatalf("height = %d, want 23", got)
	}
}

func TestTickingIsMonotone(t *testing.T) {
	src := NewTicking(time.Millisecond)
	prev := src.Current()
	for i := 0; i < 100; i++ {
		cur := src.Current()
		if cur < prev {
			t.Fatalf("height regressed: %d -> %d", prev, cur)
		}
		prev = cur
	}
}

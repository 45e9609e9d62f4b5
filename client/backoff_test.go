package client

import (
	"testing"
	"time"
)

func TestBackoffSequence(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second, 5)
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for i, w := range want {
		d, ok := b.Next()
		if !ok || d != w {
			t.Fatalf("attempt %d = %v, %v; want %v", i, d, ok, w)
		}
	}
	if _, ok := b.Next(); ok {
		t.Fatal("backoff kept going past MaxAttempts")
	}
}

func TestBackoffFourthAttemptAfterThreeFailures(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second, 5)
	for i := 0; i < 3; i++ {
		b.Next()
	}
	if d, _ := b.Next(); d != 8000*time.Millisecond {
		t.Fatalf("fourth delay = %v, want 8s", d)
	}
}

func TestBackoffCap(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second, 100)
	var last time.Duration
	for i := 0; i < 100; i++ {
		d, ok := b.Next()
		if !ok {
			t.Fatalf("stopped at %d", i)
		}
		last = d
		if i >= 5 && d != 30*time.Second {
			t.Fatalf("attempt %d = %v, want capped 30s", i, d)
		}
	}
	if last != 30*time.Second {
		t.Fatalf("last = %v", last)
	}
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second, 5)
	b.Next()
	b.Next()
	b.Reset()
	if b.Attempt() != 0 {
		t.Fatalf("attempt = %d after reset", b.Attempt())
	}
	if d, _ := b.Next(); d != time.Second {
		t.Fatalf("first delay after reset = %v", d)
	}
}

package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
		{name: "single token", rps: 0.1, burst: 1, calls: 4, wantPass: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("203.0.113.7") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	if !rl.Allow("a") {
		t.Fatal("first request for key a should pass")
	}
	if rl.Allow("a") {
		t.Fatal("second request for key a should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("key b has its own bucket")
	}
}

func TestKeyedRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := New(0.01, 1)
	defer rl.Stop()

	rl.Allow("k") // drain the only token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "k"); err == nil {
		t.Fatal("Wait() should fail when the context ends before a token is available")
	}
}

func TestKeyedRateLimiter_SweepDropsIdleKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(rl.idleTTL + time.Second)
	rl.Allow("fresh")

	rl.sweep()

	if got := rl.Len(); got != 1 {
		t.Fatalf("Len() after sweep = %d, want 1", got)
	}
}

func TestKeyedRateLimiter_RetryAfter(t *testing.T) {
	krl := New(0.2, 5)
	defer krl.Stop()

	if got := krl.RetryAfter(); got != 5*time.Second {
		t.Fatalf("RetryAfter() = %v, want 5s", got)
	}
}

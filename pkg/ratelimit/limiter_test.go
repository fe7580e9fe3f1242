package ratelimit

import (
	"testing"
	"time"
)

func TestPeerLimiter(t *testing.T) {
	// Allow 2 concurrent operations per address
	limiter := NewPeerLimiter(2)

	addr := "192.0.2.1:51820"
	otherAddr := "192.0.2.2:51820"

	if !limiter.Allow(addr) {
		t.Error("expected first operation to be allowed")
	}
	if !limiter.Allow(addr) {
		t.Error("expected second operation to be allowed")
	}
	if limiter.Allow(addr) {
		t.Error("expected third operation to be blocked")
	}
	if !limiter.Allow(otherAddr) {
		t.Error("expected operation from other address to be allowed")
	}

	limiter.Release(addr)
	if !limiter.Allow(addr) {
		t.Error("expected operation to be allowed after release")
	}

	noLimit := NewPeerLimiter(0)
	for i := 0; i < 100; i++ {
		if !noLimit.Allow(addr) {
			t.Error("expected operation to always be allowed with no limit")
		}
	}
}

func TestTokenBucketLimiter(t *testing.T) {
	// Rate: 10/sec, Burst: 2
	limiter := NewTokenBucketLimiter(10, 2)

	if !limiter.Allow() {
		t.Error("expected 1st operation (burst) to be allowed")
	}
	if !limiter.Allow() {
		t.Error("expected 2nd operation (burst) to be allowed")
	}
	if limiter.Allow() {
		t.Error("expected 3rd operation (burst exceeded) to be blocked")
	}

	// 1 token takes 0.1s to refill; wait a bit longer to be safe.
	time.Sleep(110 * time.Millisecond)

	if !limiter.Allow() {
		t.Error("expected operation to be allowed after token refill")
	}

	noLimit := NewTokenBucketLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !noLimit.Allow() {
			t.Error("expected operation to always be allowed with no limit")
		}
	}
}

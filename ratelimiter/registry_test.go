package ratelimiter

import (
	"testing"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Lookup("non-existent"); ok {
		t.Error("expected no limiter for unknown model")
	}

	limiter := New(100, 10)
	registry.Set("test-model", limiter)

	retrieved, ok := registry.Lookup("test-model")
	if !ok {
		t.Fatal("expected limiter after Set")
	}
	if retrieved != limiter {
		t.Error("retrieved limiter does not match set limiter")
	}

	replacement := New(200, 10)
	registry.Set("test-model", replacement)
	if retrieved, _ := registry.Lookup("test-model"); retrieved != replacement {
		t.Error("retrieved limiter does not match overwritten limiter")
	}

	registry.Set("test-model", nil)
	if _, ok := registry.Lookup("test-model"); ok {
		t.Error("expected nil limiter to remove the entry")
	}
}

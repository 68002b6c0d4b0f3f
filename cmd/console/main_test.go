package main

import (
	"net/http/httptest"
	"testing"
)

func TestOpenRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		path   string
		open   bool
	}{
		{"POST", "/sessions", true},
		{"GET", "/sessions", false},
		{"DELETE", "/sessions/current", false},
		{"GET", "/chart", false},
		{"GET", "/ws", false},
		{"POST", "/operations", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if got := openRoute(req); got != tc.open {
				t.Fatalf("openRoute = %t, want %t", got, tc.open)
			}
		})
	}
}

func TestSessionTokenGenerator(t *testing.T) {
	t.Parallel()

	generate := sessionTokenGenerator("deploy-secret")

	first := generate()
	second := generate()
	if first == "" || first == second {
		t.Fatalf("tokens must be distinct and non-empty: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("token length = %d, want 64 hex characters", len(first))
	}
}

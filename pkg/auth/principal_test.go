package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func backendRequest(userID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	r.Header.Set("X-Role-Name", "backend")
	r.Header.Set("X-User-ID", userID)
	return r
}

func TestResolvePrincipalBackendHeader(t *testing.T) {
	id, status, _ := ResolvePrincipal(backendRequest("bob@corp.example"))
	if status != 0 || id != "bob@corp.example" {
		t.Fatalf("expected resolution, got id=%q status=%d", id, status)
	}

	if _, status, _ := ResolvePrincipal(backendRequest("")); status != http.StatusBadRequest {
		t.Fatalf("empty id: status=%d", status)
	}
	if _, status, _ := ResolvePrincipal(backendRequest(strings.Repeat("a", 129))); status != http.StatusBadRequest {
		t.Fatalf("oversized id: status=%d", status)
	}
}

func TestPrincipalIDCharsetIsKeySafe(t *testing.T) {
	// ids become store key components; a ':' could collide with another row
	for _, bad := range []string{"alice:ops", "alice bob", "alice\n", "conv:1"} {
		if _, status, _ := ResolvePrincipal(backendRequest(bad)); status != http.StatusBadRequest {
			t.Fatalf("id %q should be rejected, got status=%d", bad, status)
		}
	}
	for _, good := range []string{"alice", "bob@corp.example", "j.doe_42", "x+y-z"} {
		if id, status, _ := ResolvePrincipal(backendRequest(good)); status != 0 || id != good {
			t.Fatalf("id %q should be accepted, got id=%q status=%d", good, id, status)
		}
	}
}

func TestSignedPrincipalStillCharsetChecked(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	r = r.WithContext(context.WithValue(r.Context(), ctxPrincipalKey{}, "alice:ops"))
	if _, status, _ := ResolvePrincipal(r); status != http.StatusBadRequest {
		t.Fatalf("signature path must apply the same charset rule, got status=%d", status)
	}
}

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"chatcore/pkg/config"
	"chatcore/pkg/logger"
	"chatcore/pkg/utils"
)

// Role represents the resolved caller role for a request.
type Role int

const (
	RoleUnauth Role = iota
	RoleFrontend
	RoleBackend
	RoleAdmin
)

// SecConfig mirrors the security-related configuration used to drive
// authentication, CORS and rate limiting behavior. Put here so limiter.go
// and gateway.go can reference the shared type.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	IPWhitelist    []string
	BackendKeys    map[string]struct{}
	FrontendKeys   map[string]struct{}
	AdminKeys      map[string]struct{}
}

type ctxPrincipalKey struct{}

// RequireSignedPrincipal verifies HMAC signature headers and injects the
// verified principal id into the request context. Backend and admin callers
// may omit the signature entirely; when one is present it is verified.
func RequireSignedPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Role-Name")
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		sig := strings.TrimSpace(r.Header.Get("X-User-Signature"))

		if role == "backend" || role == "admin" {
			if sig == "" {
				next.ServeHTTP(w, r)
				return
			}
			// signature present -> verify below
		}

		if sig == "" || userID == "" {
			logger.Warn("missing_signature_headers", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "missing signature headers")
			return
		}

		keys := config.GetSigningKeys()
		if len(keys) == 0 {
			logger.Error("no_signing_keys_configured")
			utils.JSONError(w, http.StatusInternalServerError, "server misconfigured: no signing secrets available")
			return
		}

		ok := false
		for k := range keys {
			mac := hmac.New(sha256.New, []byte(k))
			mac.Write([]byte(userID))
			expected := hex.EncodeToString(mac.Sum(nil))
			if hmac.Equal([]byte(expected), []byte(sig)) {
				ok = true
				break
			}
		}
		if !ok {
			logger.Warn("invalid_signature", "user", userID)
			utils.JSONError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
		logger.Debug("signature_verified", "user", userID)
		ctx := context.WithValue(r.Context(), ctxPrincipalKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext returns the verified principal id or empty string.
func PrincipalFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxPrincipalKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// validPrincipal gates ids at the API boundary. Ids end up as components of
// composite store keys, so the charset excludes ':' and anything
// non-printable; a ':' inside an id could collide with another row's key.
func validPrincipal(p string) (bool, string) {
	if p == "" {
		return false, "user id required"
	}
	if len(p) > 128 {
		return false, "user id too long"
	}
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_' || r == '@' || r == '+':
		default:
			return false, fmt.Sprintf("user id contains invalid character %q", r)
		}
	}
	return true, ""
}

// ResolvePrincipal is the canonical resolver handlers call. A
// signature-verified principal from context is authoritative; a conflicting
// X-User-ID header is a 403. Without a signature, backend/admin callers may
// supply the principal via X-User-ID. Returns the id, or a non-zero HTTP
// status with a message.
func ResolvePrincipal(r *http.Request) (string, int, string) {
	if id := PrincipalFromContext(r.Context()); id != "" {
		if h := strings.TrimSpace(r.Header.Get("X-User-ID")); h != "" && h != id {
			logger.Warn("principal_mismatch", "signature", id, "header", h, "path", r.URL.Path)
			return "", http.StatusForbidden, "user id mismatch between signature and header"
		}
		if ok, msg := validPrincipal(id); !ok {
			return "", http.StatusBadRequest, msg
		}
		return id, 0, ""
	}

	role := r.Header.Get("X-Role-Name")
	if role == "backend" || role == "admin" {
		if h := strings.TrimSpace(r.Header.Get("X-User-ID")); h != "" {
			if ok, msg := validPrincipal(h); !ok {
				return "", http.StatusBadRequest, msg
			}
			return h, 0, ""
		}
		return "", http.StatusBadRequest, "user id required for backend requests"
	}

	logger.Warn("missing_principal_signature", "role", role, "path", r.URL.Path)
	return "", http.StatusUnauthorized, "missing or invalid user signature"
}

// Package identity hydrates principal ids into user summaries. Credential
// checks happen outside the core; this is presentation-level lookup only.
package identity

import (
	"strings"
	"sync"

	"chatcore/pkg/models"
)

// Resolver turns a principal id into a displayable summary.
type Resolver interface {
	Summarize(id string) models.UserSummary
}

var (
	mu       sync.RWMutex
	resolver Resolver = fallbackResolver{}
)

// SetResolver installs the application-wide resolver, typically backed by
// the ERP's HR directory.
func SetResolver(r Resolver) {
	mu.Lock()
	defer mu.Unlock()
	if r != nil {
		resolver = r
	}
}

// Summarize resolves id through the installed resolver.
func Summarize(id string) models.UserSummary {
	mu.RLock()
	r := resolver
	mu.RUnlock()
	return r.Summarize(id)
}

// fallbackResolver derives a display name from the id itself so responses
// stay well-formed when no directory is wired in.
type fallbackResolver struct{}

func (fallbackResolver) Summarize(id string) models.UserSummary {
	name := id
	if i := strings.IndexAny(id, "@"); i > 0 {
		name = id[:i]
	}
	return models.UserSummary{ID: id, DisplayName: name}
}

// StaticResolver serves summaries from a fixed table; missing ids fall back
// to the id-derived name. Useful in tests and small deployments.
type StaticResolver struct {
	Users map[string]models.UserSummary
}

func (s StaticResolver) Summarize(id string) models.UserSummary {
	if u, ok := s.Users[id]; ok {
		return u
	}
	return fallbackResolver{}.Summarize(id)
}

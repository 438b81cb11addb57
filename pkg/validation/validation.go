// Package validation holds configurable content rules applied before a
// message is accepted. Rules are set once at startup from configuration.
package validation

import (
	"sync"

	"chatcore/pkg/errs"
	"chatcore/pkg/models"
)

// Rules restricts what message payloads the core accepts.
type Rules struct {
	// AllowedTypes whitelists message types; empty means all known types.
	AllowedTypes []models.MessageType
	// MaxAttachments bounds the attachment list; zero means unlimited.
	MaxAttachments int
}

var (
	mu    sync.RWMutex
	rules Rules
)

// SetRules installs the active rule set.
func SetRules(r Rules) {
	mu.Lock()
	defer mu.Unlock()
	rules = r
}

// CheckMessageType rejects message types outside the configured whitelist.
// The unknown bucket is always rejected regardless of configuration.
func CheckMessageType(t models.MessageType) error {
	if t == models.MessageOther {
		return errs.Validation("unknown message type")
	}
	mu.RLock()
	defer mu.RUnlock()
	if len(rules.AllowedTypes) == 0 {
		return nil
	}
	for _, a := range rules.AllowedTypes {
		if a == t {
			return nil
		}
	}
	return errs.Validation("message type %q is not allowed", t)
}

// CheckAttachments bounds the attachment list length.
func CheckAttachments(list []string) error {
	mu.RLock()
	max := rules.MaxAttachments
	mu.RUnlock()
	if max > 0 && len(list) > max {
		return errs.Validation("too many attachments: %d > %d", len(list), max)
	}
	return nil
}

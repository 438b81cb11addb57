// Package typing tracks ephemeral composition indicators. Entries live in
// memory with a fixed time-to-live; absence is the "not typing" state, and
// expiry is lazy: a stale entry simply fails the deadline check on the next
// read. No heartbeat-cancellation protocol is required: a renewal re-arms
// the deadline, an explicit stop removes the entry.
package typing

import (
	"sync"
	"time"
)

// TTL bounds how stale an indicator can get without renewal.
const TTL = 3 * time.Second

// Typist is one active composition indicator.
type Typist struct {
	Conversation string    `json:"conversation"`
	User         string    `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Registry holds per-conversation typing deadlines.
type Registry struct {
	mu sync.Mutex
	// conversation -> user -> deadline
	m   map[string]map[string]time.Time
	now func() time.Time
}

// NewRegistry returns an empty registry using the wall clock.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]map[string]time.Time), now: time.Now}
}

// NewRegistryWithClock returns a registry with an injectable clock for tests.
func NewRegistryWithClock(now func() time.Time) *Registry {
	return &Registry{m: make(map[string]map[string]time.Time), now: now}
}

// Set upserts the (conversation, user) indicator with a fresh TTL deadline
// when typing is true, and removes it outright when false.
func (r *Registry) Set(convID, userID string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !isTyping {
		if users, ok := r.m[convID]; ok {
			delete(users, userID)
			if len(users) == 0 {
				delete(r.m, convID)
			}
		}
		return
	}
	users, ok := r.m[convID]
	if !ok {
		users = make(map[string]time.Time)
		r.m[convID] = users
	}
	users[userID] = r.now().Add(TTL)
}

// Active returns the users currently typing in a conversation, excluding
// the requesting principal. Expired entries are pruned as they are seen.
func (r *Registry) Active(convID, excludeUser string) []Typist {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	users, ok := r.m[convID]
	if !ok {
		return nil
	}
	var out []Typist
	for u, deadline := range users {
		if !deadline.After(now) {
			delete(users, u)
			continue
		}
		if u == excludeUser {
			continue
		}
		out = append(out, Typist{Conversation: convID, User: u, ExpiresAt: deadline})
	}
	if len(users) == 0 {
		delete(r.m, convID)
	}
	return out
}

// Prune drops every expired entry and returns the number of live ones.
// Read semantics do not depend on it; it only bounds physical growth.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	live := 0
	for conv, users := range r.m {
		for u, deadline := range users {
			if !deadline.After(now) {
				delete(users, u)
				continue
			}
			live++
		}
		if len(users) == 0 {
			delete(r.m, conv)
		}
	}
	return live
}

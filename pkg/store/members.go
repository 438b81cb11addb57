package store

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/pebble"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
)

func memberKey(convID, userID string) string { return "conv:" + convID + ":member:" + userID }
func userConvKey(userID, convID string) string { return "user:" + userID + ":conv:" + convID }

// PutMember writes a membership row and its per-user index entry. The key
// identity enforces at most one row per (conversation, user) pair.
func PutMember(m models.Member) error {
	if db == nil {
		return notOpen()
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := set(memberKey(m.Conversation, m.User), b); err != nil {
		logger.Error("save_member_failed", "conversation", m.Conversation, "user", m.User, "error", err)
		return err
	}
	if err := set(userConvKey(m.User, m.Conversation), []byte(m.Conversation)); err != nil {
		logger.Error("save_member_index_failed", "conversation", m.Conversation, "user", m.User, "error", err)
		return err
	}
	return nil
}

// GetMember returns the membership row for (conversation, user), a found
// flag, and an error for storage failures. Inactive rows are returned as-is;
// callers decide what active means.
func GetMember(convID, userID string) (models.Member, bool, error) {
	var m models.Member
	if db == nil {
		return m, false, notOpen()
	}
	v, ok, err := get(memberKey(convID, userID))
	if err != nil || !ok {
		return m, false, err
	}
	if err := json.Unmarshal(v, &m); err != nil {
		return m, false, err
	}
	return m, true, nil
}

// ListMembers returns all membership rows of a conversation, active or not.
func ListMembers(convID string) ([]models.Member, error) {
	if db == nil {
		return nil, notOpen()
	}
	prefix := []byte("conv:" + convID + ":member:")
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Member
	for iter.First(); iter.Valid(); iter.Next() {
		var m models.Member
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// ListConversationIDsForUser returns every conversation id the user has a
// membership row in, active or not.
func ListConversationIDsForUser(userID string) ([]string, error) {
	if db == nil {
		return nil, notOpen()
	}
	prefix := []byte("user:" + userID + ":conv:")
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, string(append([]byte(nil), iter.Value()...)))
	}
	return out, iter.Error()
}

// RepairMemberIndex rewrites the per-user index entry for a membership row.
// Used by startup migrations to backfill indexes for rows written before the
// index existed.
func RepairMemberIndex(convID, userID string) error {
	if db == nil {
		return notOpen()
	}
	return set(userConvKey(userID, convID), []byte(convID))
}

// DropMemberIndex removes the per-user index entry without touching the
// membership row itself.
func DropMemberIndex(convID, userID string) error {
	if db == nil {
		return notOpen()
	}
	return del(userConvKey(userID, convID))
}

// scanMemberKeys walks every conv:<id>:member:<user> key.
func scanMemberKeys(fn func(convID, userID string) error) error {
	prefix := []byte("conv:")
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		rest := strings.TrimPrefix(key, "conv:")
		i := strings.Index(rest, ":member:")
		if i < 0 {
			continue
		}
		if err := fn(rest[:i], rest[i+len(":member:"):]); err != nil {
			return err
		}
	}
	return iter.Error()
}

// UpdateMember applies fn to the stored row for (conversation, user) and
// writes it back. Returns false when no row exists. The store mutex
// serializes concurrent read-modify-write cycles on membership rows.
func UpdateMember(convID, userID string, fn func(*models.Member)) (bool, error) {
	if db == nil {
		return false, notOpen()
	}
	mu.Lock()
	defer mu.Unlock()
	m, ok, err := GetMember(convID, userID)
	if err != nil || !ok {
		return false, err
	}
	fn(&m)
	b, err := json.Marshal(m)
	if err != nil {
		return false, err
	}
	if err := set(memberKey(convID, userID), b); err != nil {
		return false, err
	}
	return true, nil
}

package store

import (
	"encoding/json"

	"github.com/cockroachdb/pebble"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
)

func reactionKey(msgID, userID, reaction string) string {
	return "react:" + msgID + ":" + userID + ":" + reaction
}

// AddReaction performs an idempotent get-or-create on the (message, user,
// reaction) key. It returns the stored row and whether it was newly created;
// a duplicate add is a no-op, not an error.
func AddReaction(r models.Reaction) (models.Reaction, bool, error) {
	if db == nil {
		return r, false, notOpen()
	}
	mu.Lock()
	defer mu.Unlock()
	key := reactionKey(r.Message, r.User, r.Reaction)
	if v, ok, err := get(key); err != nil {
		return r, false, err
	} else if ok {
		var existing models.Reaction
		if err := json.Unmarshal(v, &existing); err == nil {
			return existing, false, nil
		}
		return r, false, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return r, false, err
	}
	if err := set(key, b); err != nil {
		logger.Error("add_reaction_failed", "message", r.Message, "user", r.User, "error", err)
		return r, false, err
	}
	return r, true, nil
}

// RemoveReaction deletes the exact (message, user, reaction) row if present
// and reports whether anything was deleted.
func RemoveReaction(msgID, userID, reaction string) (bool, error) {
	if db == nil {
		return false, notOpen()
	}
	key := reactionKey(msgID, userID, reaction)
	_, ok, err := get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := del(key); err != nil {
		logger.Error("remove_reaction_failed", "message", msgID, "user", userID, "error", err)
		return false, err
	}
	return true, nil
}

// ListReactions returns all reaction rows for a message.
func ListReactions(msgID string) ([]models.Reaction, error) {
	if db == nil {
		return nil, notOpen()
	}
	prefix := []byte("react:" + msgID + ":")
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Reaction
	for iter.First(); iter.Valid(); iter.Next() {
		var r models.Reaction
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, iter.Error()
}

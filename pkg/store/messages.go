package store

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
)

// seq reduces key collisions when multiple messages share the same
// nanosecond timestamp; total order within a conversation is (ts, seq).
var seq uint64

func msgPrefix(convID string) string { return "conv:" + convID + ":msg:" }

func msgTimelineKey(convID string, ts int64, s uint64) string {
	return fmt.Sprintf("%s%020d-%06d", msgPrefix(convID), ts, s)
}

func msgIDKey(msgID string) string { return "msgid:" + msgID }

// AppendMessage inserts a message into its conversation timeline under a
// sortable timestamp key and indexes it by message id. The timeline is
// append-only; content is never rewritten except to raise the deleted flag.
func AppendMessage(m models.Message) error {
	if db == nil {
		return notOpen()
	}
	s := atomic.AddUint64(&seq, 1)
	key := msgTimelineKey(m.Conversation, m.TS, s)
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := set(key, b); err != nil {
		logger.Error("append_message_failed", "conversation", m.Conversation, "key", key, "error", err)
		return err
	}
	// index by id so replies, reactions and soft deletes can find the row
	if err := set(msgIDKey(m.ID), []byte(key)); err != nil {
		logger.Error("append_message_index_failed", "msg_id", m.ID, "error", err)
		return err
	}
	logger.Info("message_appended", "conversation", m.Conversation, "msg_id", m.ID)
	return nil
}

// GetMessage resolves a message by id through the id index.
func GetMessage(msgID string) (models.Message, bool, error) {
	var m models.Message
	if db == nil {
		return m, false, notOpen()
	}
	kv, ok, err := get(msgIDKey(msgID))
	if err != nil || !ok {
		return m, false, err
	}
	v, ok, err := get(string(kv))
	if err != nil || !ok {
		return m, false, err
	}
	if err := json.Unmarshal(v, &m); err != nil {
		return m, false, err
	}
	return m, true, nil
}

// MarkMessageDeleted raises the deleted flag on the stored row. The row
// stays in the timeline; readers and search skip it by flag.
func MarkMessageDeleted(msgID string) (bool, error) {
	if db == nil {
		return false, notOpen()
	}
	kv, ok, err := get(msgIDKey(msgID))
	if err != nil || !ok {
		return false, err
	}
	key := string(kv)
	v, ok, err := get(key)
	if err != nil || !ok {
		return false, err
	}
	var m models.Message
	if err := json.Unmarshal(v, &m); err != nil {
		return false, err
	}
	if m.Deleted {
		return true, nil
	}
	m.Deleted = true
	b, err := json.Marshal(m)
	if err != nil {
		return false, err
	}
	if err := set(key, b); err != nil {
		return false, err
	}
	logger.Info("message_soft_deleted", "msg_id", msgID)
	return true, nil
}

// ListMessagesBefore returns up to limit messages of a conversation with
// ts < before, newest-first. A zero before means no upper cursor.
func ListMessagesBefore(convID string, limit int, before int64) ([]models.Message, error) {
	if db == nil {
		return nil, notOpen()
	}
	prefix := []byte(msgPrefix(convID))
	upper := prefixUpperBound(prefix)
	if before > 0 {
		// exclusive bound: a stored key for ts==before sorts after this
		// prefix because of its "-seq" suffix, so it is excluded.
		upper = []byte(fmt.Sprintf("%s%020d", msgPrefix(convID), before))
	}
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for ok := iter.Last(); ok; ok = iter.Prev() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, iter.Error()
}

// LatestMessage returns the most recent message of a conversation.
func LatestMessage(convID string) (models.Message, bool, error) {
	var m models.Message
	if db == nil {
		return m, false, notOpen()
	}
	prefix := []byte(msgPrefix(convID))
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return m, false, err
	}
	defer iter.Close()
	if !iter.Last() {
		return m, false, iter.Error()
	}
	if err := json.Unmarshal(iter.Value(), &m); err != nil {
		return m, false, err
	}
	return m, true, nil
}

// ScanMessages walks a conversation timeline in ascending order, calling fn
// for each message until fn returns false.
func ScanMessages(convID string, fn func(models.Message) bool) error {
	if db == nil {
		return notOpen()
	}
	prefix := []byte(msgPrefix(convID))
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		if !fn(m) {
			break
		}
	}
	return iter.Error()
}

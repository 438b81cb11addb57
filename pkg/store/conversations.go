package store

import (
	"encoding/json"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
)

func convMetaKey(convID string) string { return "conv:" + convID + ":meta" }

// SaveConversation stores conversation metadata under its reserved key.
func SaveConversation(c models.Conversation) error {
	if db == nil {
		return notOpen()
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := set(convMetaKey(c.ID), b); err != nil {
		logger.Error("save_conversation_failed", "conversation", c.ID, "error", err)
		return err
	}
	logger.Info("conversation_saved", "conversation", c.ID, "type", string(c.Type))
	return nil
}

// GetConversation returns the stored conversation, a found flag, and an
// error for storage failures.
func GetConversation(convID string) (models.Conversation, bool, error) {
	var c models.Conversation
	if db == nil {
		return c, false, notOpen()
	}
	v, ok, err := get(convMetaKey(convID))
	if err != nil || !ok {
		return c, false, err
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, false, err
	}
	return c, true, nil
}

// TouchLastMessage advances the conversation's denormalized recency marker.
// This is the second, independent write after a message insert; callers
// tolerate its failure (the listing order is then briefly stale).
func TouchLastMessage(convID string, ts int64) error {
	if db == nil {
		return notOpen()
	}
	c, ok, err := GetConversation(convID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if ts <= c.LastMessageTS {
		return nil
	}
	c.LastMessageTS = ts
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return set(convMetaKey(convID), b)
}

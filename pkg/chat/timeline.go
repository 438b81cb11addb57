package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"chatcore/pkg/errs"
	"chatcore/pkg/identity"
	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
	"chatcore/pkg/utils"
	"chatcore/pkg/validation"
)

// MessageView is a message hydrated with user summaries for rendering.
type MessageView struct {
	models.Message
	Sender  models.UserSummary `json:"sender_user"`
	ReplyTo *RepliedMessage    `json:"reply_to_message,omitempty"`
}

// RepliedMessage is the compact form of a quoted message.
type RepliedMessage struct {
	ID      string             `json:"id"`
	Sender  models.UserSummary `json:"sender_user"`
	Content string             `json:"content"`
	Deleted bool               `json:"deleted"`
}

// hydrate attaches user summaries and the quoted parent. Deleted messages
// keep their tombstone row but never expose content, in the listing and in
// the reply quote alike.
func hydrate(m models.Message) MessageView {
	v := MessageView{Message: m, Sender: identity.Summarize(m.Sender)}
	if m.Deleted {
		v.Content = ""
		v.Attachments = nil
	}
	if m.ReplyTo != "" {
		if parent, ok, err := store.GetMessage(m.ReplyTo); err == nil && ok {
			r := &RepliedMessage{
				ID:      parent.ID,
				Sender:  identity.Summarize(parent.Sender),
				Deleted: parent.Deleted,
			}
			if !parent.Deleted {
				r.Content = parent.Content
			}
			v.ReplyTo = r
		}
	}
	return v
}

// SendMessage validates and appends a message to the conversation timeline.
// The sender must be an active member; reply_to, when set, must name a
// message in the same conversation.
func SendMessage(principal, convID, content, rawType, replyTo string, attachments []string) (*MessageView, error) {
	if _, err := RequireMember(convID, principal); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		return nil, errs.Validation("message content is empty")
	}
	if int64(len(content)) > contentLimit() {
		return nil, errs.Validation("message content exceeds %d bytes", contentLimit())
	}
	if !utf8.ValidString(content) {
		return nil, errs.Validation("message content is not valid UTF-8")
	}
	mtype := models.ParseMessageType(rawType)
	if err := validation.CheckMessageType(mtype); err != nil {
		return nil, err
	}
	if err := validation.CheckAttachments(attachments); err != nil {
		return nil, err
	}
	if replyTo != "" {
		parent, ok, err := store.GetMessage(replyTo)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if !ok || parent.Conversation != convID {
			return nil, errs.Validation("reply_to does not name a message in this conversation")
		}
	}

	msg := models.Message{
		ID:           utils.GenMessageID(),
		Conversation: convID,
		Sender:       principal,
		Content:      content,
		Type:         mtype,
		ReplyTo:      replyTo,
		Attachments:  attachments,
		TS:           time.Now().UTC().UnixNano(),
	}
	if err := store.AppendMessage(msg); err != nil {
		return nil, errs.Storage(err)
	}
	// Preview bookkeeping; the message itself is already durable.
	if err := store.TouchLastMessage(convID, msg.TS); err != nil {
		logger.Warn("last_message_touch_failed", "conversation", convID, "error", err)
	}
	v := hydrate(msg)
	return &v, nil
}

// ListMessages returns up to limit messages older than before (UnixNano, 0
// means "now"), oldest-first within the page. Reading advances the caller's
// read cursor to the current time; cursor failures are logged, not returned,
// so a flaky cursor never blocks reading.
func ListMessages(principal, convID string, before int64, limit int) ([]MessageView, error) {
	if _, err := RequireMember(convID, principal); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)
	if before <= 0 {
		before = time.Now().UTC().UnixNano() + 1
	}
	msgs, err := store.ListMessagesBefore(convID, limit, before)
	if err != nil {
		return nil, errs.Storage(err)
	}
	// newest-first from the store; present oldest-first
	out := make([]MessageView, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		out = append(out, hydrate(msgs[i]))
	}

	now := time.Now().UTC().UnixNano()
	if _, err := store.UpdateMember(convID, principal, func(m *models.Member) {
		if now > m.LastReadTS {
			m.LastReadTS = now
		}
	}); err != nil {
		logger.Warn("read_cursor_update_failed", "conversation", convID, "user", principal, "error", err)
	}
	return out, nil
}

// DeleteMessage soft-deletes a message. The sender may delete their own
// messages; a conversation admin may delete any. Already-deleted is a no-op.
func DeleteMessage(principal, convID, messageID string) error {
	actor, err := RequireMember(convID, principal)
	if err != nil {
		return err
	}
	msg, ok, err := store.GetMessage(messageID)
	if err != nil {
		return errs.Storage(err)
	}
	if !ok || msg.Conversation != convID {
		return errs.ErrNotFound
	}
	if msg.Sender != principal && actor.Role != models.RoleAdmin {
		return errs.ErrForbidden
	}
	if _, err := store.MarkMessageDeleted(messageID); err != nil {
		return errs.Storage(err)
	}
	logger.Info("message_deleted", "conversation", convID, "message", messageID, "by", principal)
	return nil
}

package models

// MessageType is a closed enumeration of message payload kinds with an
// explicit fallback for forward compatibility.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageImage  MessageType = "image"
	MessageSystem MessageType = "system"
	MessageOther  MessageType = "other"
)

// ParseMessageType normalizes a raw type string; empty defaults to text.
func ParseMessageType(s string) MessageType {
	switch MessageType(s) {
	case MessageText, MessageFile, MessageImage, MessageSystem:
		return MessageType(s)
	case "":
		return MessageText
	default:
		return MessageOther
	}
}

type Message struct {
	ID           string      `json:"id"`
	Conversation string      `json:"conversation"`
	Sender       string      `json:"sender"`
	Content      string      `json:"content"`
	Type         MessageType `json:"type"`
	// ReplyTo optionally references another message in the same conversation.
	ReplyTo     string   `json:"reply_to,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	// Deleted messages are flagged, never removed, and excluded from search.
	Deleted bool  `json:"deleted,omitempty"`
	TS      int64 `json:"ts"`
}

// Reaction is one (message, user, reaction) row; the triple is unique.
type Reaction struct {
	Message  string `json:"message"`
	User     string `json:"user"`
	Reaction string `json:"reaction"`
	TS       int64  `json:"ts"`
}

package models

// ConversationType is a closed enumeration of conversation kinds. Unknown
// inputs normalize to ConversationOther so stored data from newer versions
// still round-trips.
type ConversationType string

const (
	ConversationDirect  ConversationType = "direct"
	ConversationGroup   ConversationType = "group"
	ConversationChannel ConversationType = "channel"
	ConversationOther   ConversationType = "other"
)

// ParseConversationType normalizes a raw type string.
func ParseConversationType(s string) ConversationType {
	switch ConversationType(s) {
	case ConversationDirect, ConversationGroup, ConversationChannel:
		return ConversationType(s)
	default:
		return ConversationOther
	}
}

// MemberRole is the role a member holds inside a conversation.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

type Conversation struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Type      ConversationType `json:"type"`
	IsPrivate bool             `json:"is_private,omitempty"`
	// CreatedBy is the principal that started the conversation.
	CreatedBy string `json:"created_by"`
	// Department optionally scopes the conversation to an ERP department.
	Department string `json:"department,omitempty"`
	// LastMessageTS is a denormalized recency marker (ns). It is updated by a
	// second, non-transactional write after a message insert and may briefly
	// lag the true latest message.
	LastMessageTS int64 `json:"last_message_ts,omitempty"`
	CreatedTS     int64 `json:"created_ts"`
}

// Member is one (conversation, user) membership row. Only rows with
// Active=true confer access; removal deactivates, never deletes.
type Member struct {
	Conversation string     `json:"conversation"`
	User         string     `json:"user"`
	Role         MemberRole `json:"role"`
	Active       bool       `json:"active"`
	// LastReadTS is the coarse conversation-wide read cursor (ns).
	LastReadTS int64 `json:"last_read_ts,omitempty"`
	JoinedTS   int64 `json:"joined_ts"`
}

// UserSummary is the hydrated shape for a principal, supplied by the
// external identity collaborator.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

package utils

import "github.com/google/uuid"

// GenMessageID returns a new message id.
func GenMessageID() string { return "msg-" + uuid.NewString() }

// GenConversationID returns a new conversation id.
func GenConversationID() string { return "conv-" + uuid.NewString() }

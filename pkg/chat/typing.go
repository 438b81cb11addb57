package chat

import "chatcore/pkg/typing"

// Typists is the process-wide typing registry.
var Typists = typing.NewRegistry()

// SetTyping marks or clears the principal's typing state in a conversation.
func SetTyping(principal, convID string, isTyping bool) error {
	if _, err := RequireMember(convID, principal); err != nil {
		return err
	}
	Typists.Set(convID, principal, isTyping)
	return nil
}

// ActiveTypers returns who is currently typing in a conversation, excluding
// the caller.
func ActiveTypers(principal, convID string) ([]typing.Typist, error) {
	if _, err := RequireMember(convID, principal); err != nil {
		return nil, err
	}
	return Typists.Active(convID, principal), nil
}

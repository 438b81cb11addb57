package chat

import (
	"sort"
	"strings"
	"time"

	"chatcore/pkg/errs"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
)

// ReactionCount is the aggregate for one reaction symbol on a message.
type ReactionCount struct {
	Reaction string   `json:"reaction"`
	Count    int      `json:"count"`
	Users    []string `json:"users"`
}

func messageInConversation(convID, messageID string) (models.Message, error) {
	msg, ok, err := store.GetMessage(messageID)
	if err != nil {
		return models.Message{}, errs.Storage(err)
	}
	if !ok || msg.Conversation != convID {
		return models.Message{}, errs.ErrNotFound
	}
	return msg, nil
}

// AddReaction records principal's reaction on a message. Repeating an
// identical (message, user, reaction) triple is a no-op returning the
// existing row; created reports whether a new row was written.
func AddReaction(principal, convID, messageID, reaction string) (models.Reaction, bool, error) {
	if _, err := RequireMember(convID, principal); err != nil {
		return models.Reaction{}, false, err
	}
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return models.Reaction{}, false, errs.Validation("reaction is empty")
	}
	if _, err := messageInConversation(convID, messageID); err != nil {
		return models.Reaction{}, false, err
	}
	row := models.Reaction{
		Message:  messageID,
		User:     principal,
		Reaction: reaction,
		TS:       time.Now().UTC().UnixNano(),
	}
	got, created, err := store.AddReaction(row)
	if err != nil {
		return models.Reaction{}, false, errs.Storage(err)
	}
	return got, created, nil
}

// RemoveReaction deletes principal's reaction from a message. Removing a
// reaction that was never added is not an error; deleted reports whether a
// row was actually removed.
func RemoveReaction(principal, convID, messageID, reaction string) (bool, error) {
	if _, err := RequireMember(convID, principal); err != nil {
		return false, err
	}
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return false, errs.Validation("reaction is empty")
	}
	if _, err := messageInConversation(convID, messageID); err != nil {
		return false, err
	}
	deleted, err := store.RemoveReaction(messageID, principal, reaction)
	if err != nil {
		return false, errs.Storage(err)
	}
	return deleted, nil
}

// ListReactions aggregates reactions on a message grouped by symbol, each
// group carrying its reacting users. Groups are ordered by count descending,
// then symbol, so renderings are stable.
func ListReactions(principal, convID, messageID string) ([]ReactionCount, error) {
	if _, err := RequireMember(convID, principal); err != nil {
		return nil, err
	}
	if _, err := messageInConversation(convID, messageID); err != nil {
		return nil, err
	}
	rows, err := store.ListReactions(messageID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	byVal := make(map[string][]string)
	for _, r := range rows {
		byVal[r.Reaction] = append(byVal[r.Reaction], r.User)
	}
	out := make([]ReactionCount, 0, len(byVal))
	for val, users := range byVal {
		sort.Strings(users)
		out = append(out, ReactionCount{Reaction: val, Count: len(users), Users: users})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reaction < out[j].Reaction
	})
	return out, nil
}

package chat

import (
	"sort"
	"strings"

	"chatcore/pkg/errs"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
)

// SearchResult is a matched message tagged with its conversation.
type SearchResult struct {
	MessageView
	ConversationName string `json:"conversation_name"`
}

// SearchMessages scans the principal's conversations for messages whose
// content contains the query, case-insensitively. Only conversations with
// an active membership are scanned; soft-deleted messages never match.
// Results are ordered newest-first and paginated.
func SearchMessages(principal, query string, page, pageSize int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.Validation("search query is empty")
	}
	needle := strings.ToLower(query)

	ids, err := store.ListConversationIDsForUser(principal)
	if err != nil {
		return nil, errs.Storage(err)
	}
	var matches []SearchResult
	for _, convID := range ids {
		m, ok, err := store.GetMember(convID, principal)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if !ok || !m.Active {
			continue
		}
		conv, ok, err := store.GetConversation(convID)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if !ok {
			continue
		}
		err = store.ScanMessages(convID, func(msg models.Message) bool {
			if msg.Deleted {
				return true
			}
			if strings.Contains(strings.ToLower(msg.Content), needle) {
				matches = append(matches, SearchResult{
					MessageView:      hydrate(msg),
					ConversationName: conv.Name,
				})
			}
			return true
		})
		if err != nil {
			return nil, errs.Storage(err)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].TS > matches[j].TS
	})
	return paginate(matches, page, pageSize), nil
}

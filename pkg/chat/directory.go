package chat

import (
	"sort"
	"time"

	"chatcore/pkg/errs"
	"chatcore/pkg/identity"
	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
	"chatcore/pkg/utils"
)

// MemberView pairs a membership row with its hydrated user summary.
type MemberView struct {
	models.Member
	User models.UserSummary `json:"user"`
}

// ConversationView is a conversation with its full roster. FailedMembers
// lists member ids whose insert failed during creation (best-effort roster,
// reported rather than rolled back).
type ConversationView struct {
	models.Conversation
	Members       []MemberView `json:"members"`
	FailedMembers []string     `json:"failed_members,omitempty"`
}

// ConversationPreview is a directory listing entry: the conversation plus
// its single most recent message.
type ConversationPreview struct {
	models.Conversation
	LastMessage *models.Message `json:"last_message,omitempty"`
}

func roster(convID string) ([]MemberView, error) {
	ms, err := store.ListMembers(convID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	out := make([]MemberView, 0, len(ms))
	for _, m := range ms {
		out = append(out, MemberView{Member: m, User: identity.Summarize(m.User)})
	}
	return out, nil
}

// CreateConversation creates a conversation on behalf of principal. The
// creator becomes admin; the remaining memberIDs are inserted as members,
// each insert independent. A failure partway through does not roll back
// the conversation or the creator's membership, it is reported in
// FailedMembers instead.
func CreateConversation(principal, rawType string, memberIDs []string, name, department string, isPrivate bool) (*ConversationView, error) {
	ctype := models.ParseConversationType(rawType)
	if ctype == models.ConversationOther {
		return nil, errs.Validation("unknown conversation type %q", rawType)
	}

	// distinct non-creator members
	others := make([]string, 0, len(memberIDs))
	seen := map[string]struct{}{principal: {}}
	for _, id := range memberIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		others = append(others, id)
	}
	if ctype == models.ConversationDirect && len(others) != 1 {
		return nil, errs.Validation("direct conversation requires exactly two members")
	}

	now := time.Now().UTC().UnixNano()
	conv := models.Conversation{
		ID:         utils.GenConversationID(),
		Name:       name,
		Type:       ctype,
		IsPrivate:  isPrivate,
		CreatedBy:  principal,
		Department: department,
		CreatedTS:  now,
	}
	if err := store.SaveConversation(conv); err != nil {
		return nil, errs.Storage(err)
	}
	creator := models.Member{
		Conversation: conv.ID,
		User:         principal,
		Role:         models.RoleAdmin,
		Active:       true,
		JoinedTS:     now,
	}
	if err := store.PutMember(creator); err != nil {
		return nil, errs.Storage(err)
	}

	var failed []string
	for _, id := range others {
		m := models.Member{
			Conversation: conv.ID,
			User:         id,
			Role:         models.RoleMember,
			Active:       true,
			JoinedTS:     now,
		}
		if err := store.PutMember(m); err != nil {
			logger.Warn("member_insert_failed", "conversation", conv.ID, "user", id, "error", err)
			failed = append(failed, id)
		}
	}

	members, err := roster(conv.ID)
	if err != nil {
		return nil, err
	}
	return &ConversationView{Conversation: conv, Members: members, FailedMembers: failed}, nil
}

// GetConversation returns the conversation with its roster. A missing
// conversation and a conversation the principal is not an active member of
// produce the same outcome.
func GetConversation(principal, convID string) (*ConversationView, error) {
	if _, err := RequireMember(convID, principal); err != nil {
		return nil, err
	}
	conv, ok, err := store.GetConversation(convID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if !ok {
		return nil, errs.ErrForbidden
	}
	members, err := roster(convID)
	if err != nil {
		return nil, err
	}
	return &ConversationView{Conversation: conv, Members: members}, nil
}

// ListConversations returns the conversations where principal holds an
// active membership, ordered by last_message_ts descending, each with its
// most recent message for preview. Pure read: read cursors are untouched.
func ListConversations(principal string, page, pageSize int) ([]ConversationPreview, error) {
	ids, err := store.ListConversationIDsForUser(principal)
	if err != nil {
		return nil, errs.Storage(err)
	}
	var out []ConversationPreview
	for _, id := range ids {
		m, ok, err := store.GetMember(id, principal)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if !ok || !m.Active {
			continue
		}
		conv, ok, err := store.GetConversation(id)
		if err != nil {
			return nil, errs.Storage(err)
		}
		if !ok {
			continue
		}
		p := ConversationPreview{Conversation: conv}
		if last, ok, err := store.LatestMessage(id); err == nil && ok {
			p.LastMessage = &last
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		at, bt := a.LastMessageTS, b.LastMessageTS
		if at == 0 {
			at = a.CreatedTS
		}
		if bt == 0 {
			bt = b.CreatedTS
		}
		return at > bt
	})
	return paginate(out, page, pageSize), nil
}

// AddMember adds (or reactivates) a member. Admin-only; direct
// conversations keep their two-member roster for life.
func AddMember(principal, convID, userID string, rawRole string) (*MemberView, error) {
	actor, err := RequireMember(convID, principal)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		return nil, errs.ErrForbidden
	}
	conv, ok, err := store.GetConversation(convID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	if !ok {
		return nil, errs.ErrForbidden
	}
	if conv.Type == models.ConversationDirect {
		return nil, errs.Validation("cannot modify membership of a direct conversation")
	}
	if userID == "" {
		return nil, errs.Validation("member id required")
	}
	role := models.RoleMember
	if models.MemberRole(rawRole) == models.RoleAdmin {
		role = models.RoleAdmin
	}

	// reactivate an existing row rather than duplicating it
	updated, err := store.UpdateMember(convID, userID, func(m *models.Member) {
		m.Active = true
		m.Role = role
	})
	if err != nil {
		return nil, errs.Storage(err)
	}
	if !updated {
		m := models.Member{
			Conversation: convID,
			User:         userID,
			Role:         role,
			Active:       true,
			JoinedTS:     time.Now().UTC().UnixNano(),
		}
		if err := store.PutMember(m); err != nil {
			return nil, errs.Storage(err)
		}
	}
	m, _, err := store.GetMember(convID, userID)
	if err != nil {
		return nil, errs.Storage(err)
	}
	return &MemberView{Member: m, User: identity.Summarize(userID)}, nil
}

// RemoveMember deactivates a membership row; the row itself is kept.
// Admins may remove anyone; a member may remove themselves (leave).
func RemoveMember(principal, convID, userID string) error {
	actor, err := RequireMember(convID, principal)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && principal != userID {
		return errs.ErrForbidden
	}
	conv, ok, err := store.GetConversation(convID)
	if err != nil {
		return errs.Storage(err)
	}
	if !ok {
		return errs.ErrForbidden
	}
	if conv.Type == models.ConversationDirect {
		return errs.Validation("cannot modify membership of a direct conversation")
	}
	updated, err := store.UpdateMember(convID, userID, func(m *models.Member) {
		m.Active = false
	})
	if err != nil {
		return errs.Storage(err)
	}
	if !updated {
		return errs.ErrNotFound
	}
	logger.Info("member_deactivated", "conversation", convID, "user", userID, "by", principal)
	return nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	pageSize = clampLimit(pageSize)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

package chat

import (
	"chatcore/pkg/errs"
	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
)

// RequireMember resolves the active membership of principal in the
// conversation. Every conversation-scoped operation calls this first, and
// the failure is the same whether the conversation is missing, the row is
// missing, or the row is inactive: existence must not leak.
//
// Membership is re-checked on every call on purpose: removal or demotion
// takes effect on the caller's next operation, never eventually.
func RequireMember(convID, principal string) (models.Member, error) {
	m, ok, err := store.GetMember(convID, principal)
	if err != nil {
		logger.Error("membership_lookup_failed", "conversation", convID, "user", principal, "error", err)
		return models.Member{}, errs.Storage(err)
	}
	if !ok || !m.Active {
		logger.Debug("membership_denied", "conversation", convID, "user", principal)
		return models.Member{}, errs.ErrForbidden
	}
	return m, nil
}

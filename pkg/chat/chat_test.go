package chat

import (
	"errors"
	"testing"

	"chatcore/pkg/errs"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func mustCreate(t *testing.T, creator, ctype string, members []string) *ConversationView {
	t.Helper()
	v, err := CreateConversation(creator, ctype, members, "room", "", false)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return v
}

func mustSend(t *testing.T, sender, convID, content string) *MessageView {
	t.Helper()
	v, err := SendMessage(sender, convID, content, "text", "", nil)
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	return v
}

func TestNonMemberAndMissingConversationLookAlike(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	_, errOutsider := ListMessages("mallory", conv.ID, 0, 10)
	_, errMissing := ListMessages("mallory", "conv-does-not-exist", 0, 10)

	if !errors.Is(errOutsider, errs.ErrForbidden) {
		t.Fatalf("outsider error: %v", errOutsider)
	}
	if !errors.Is(errMissing, errs.ErrForbidden) {
		t.Fatalf("missing conversation error: %v", errMissing)
	}
	if errOutsider.Error() != errMissing.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errOutsider, errMissing)
	}
}

func TestDirectConversationNeedsExactlyTwoMembers(t *testing.T) {
	openTestStore(t)

	if _, err := CreateConversation("alice", "direct", []string{"bob", "carol"}, "", "", true); !errs.IsValidation(err) {
		t.Fatalf("three-member direct should fail validation, got %v", err)
	}
	if _, err := CreateConversation("alice", "direct", nil, "", "", true); !errs.IsValidation(err) {
		t.Fatalf("solo direct should fail validation, got %v", err)
	}
	// duplicates and the creator's own id collapse
	v, err := CreateConversation("alice", "direct", []string{"bob", "bob", "alice"}, "", "", true)
	if err != nil {
		t.Fatalf("two-member direct: %v", err)
	}
	if len(v.Members) != 2 {
		t.Fatalf("expected 2 members, got %+v", v.Members)
	}
}

func TestUnknownConversationTypeRejected(t *testing.T) {
	openTestStore(t)
	if _, err := CreateConversation("alice", "broadcast", nil, "", "", false); !errs.IsValidation(err) {
		t.Fatalf("unknown type should fail validation, got %v", err)
	}
}

func TestCreatorBecomesAdmin(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	var creator *MemberView
	for i := range conv.Members {
		if conv.Members[i].User.ID == "alice" {
			creator = &conv.Members[i]
		}
	}
	if creator == nil || creator.Role != models.RoleAdmin {
		t.Fatalf("creator must be admin: %+v", conv.Members)
	}
}

func TestSendAndListOldestFirst(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	mustSend(t, "alice", conv.ID, "first")
	mustSend(t, "bob", conv.ID, "second")
	mustSend(t, "alice", conv.ID, "third")

	out, err := ListMessages("bob", conv.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 || out[0].Content != "first" || out[2].Content != "third" {
		t.Fatalf("unexpected order: %+v", out)
	}
	if out[0].Sender.ID != "alice" {
		t.Fatalf("sender not hydrated: %+v", out[0])
	}
}

func TestListPaginatesWithBeforeCursor(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	var third *MessageView
	for i, c := range []string{"m1", "m2", "m3", "m4"} {
		v := mustSend(t, "alice", conv.ID, c)
		if i == 2 {
			third = v
		}
	}

	out, err := ListMessages("alice", conv.ID, third.TS, 10)
	if err != nil {
		t.Fatalf("list before: %v", err)
	}
	if len(out) != 2 || out[0].Content != "m1" || out[1].Content != "m2" {
		t.Fatalf("unexpected page: %+v", out)
	}
}

func TestListAdvancesReadCursor(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})
	mustSend(t, "alice", conv.ID, "hello")

	if _, err := ListMessages("bob", conv.ID, 0, 10); err != nil {
		t.Fatalf("list: %v", err)
	}
	m, ok, err := store.GetMember(conv.ID, "bob")
	if err != nil || !ok {
		t.Fatalf("member lookup: ok=%v err=%v", ok, err)
	}
	if m.LastReadTS == 0 {
		t.Fatalf("read cursor not advanced")
	}
}

func TestEmptyContentRejectedBeforeStorage(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := SendMessage("alice", conv.ID, content, "text", "", nil); !errs.IsValidation(err) {
			t.Fatalf("content %q should fail validation, got %v", content, err)
		}
	}
	out, _ := ListMessages("alice", conv.ID, 0, 10)
	if len(out) != 0 {
		t.Fatalf("nothing should have been stored: %+v", out)
	}
}

func TestReplyToMustBeInSameConversation(t *testing.T) {
	openTestStore(t)
	convA := mustCreate(t, "alice", "group", []string{"bob"})
	convB := mustCreate(t, "alice", "group", []string{"bob"})
	parent := mustSend(t, "alice", convA.ID, "root")

	if _, err := SendMessage("bob", convB.ID, "cross reply", "text", parent.ID, nil); !errs.IsValidation(err) {
		t.Fatalf("cross-conversation reply should fail validation, got %v", err)
	}
	if _, err := SendMessage("bob", convA.ID, "reply", "text", "msg-missing", nil); !errs.IsValidation(err) {
		t.Fatalf("dangling reply should fail validation, got %v", err)
	}

	v, err := SendMessage("bob", convA.ID, "reply", "text", parent.ID, nil)
	if err != nil {
		t.Fatalf("valid reply: %v", err)
	}
	if v.ReplyTo == nil || v.ReplyTo.ID != parent.ID || v.ReplyTo.Sender.ID != "alice" {
		t.Fatalf("reply not hydrated: %+v", v.ReplyTo)
	}
}

func TestRemovalTakesEffectOnNextCall(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	if _, err := ListMessages("bob", conv.ID, 0, 10); err != nil {
		t.Fatalf("bob should read before removal: %v", err)
	}
	if err := RemoveMember("alice", conv.ID, "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := ListMessages("bob", conv.ID, 0, 10); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("removed member must be forbidden, got %v", err)
	}
}

func TestReAddReactivatesMembership(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	if err := RemoveMember("alice", conv.ID, "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := AddMember("alice", conv.ID, "bob", "member"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if _, err := ListMessages("bob", conv.ID, 0, 10); err != nil {
		t.Fatalf("reactivated member should read: %v", err)
	}
	// still a single row for bob
	ms, _ := store.ListMembers(conv.ID)
	count := 0
	for _, m := range ms {
		if m.User == "bob" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one membership row for bob, got %d", count)
	}
}

func TestMembershipMutationsAdminOnly(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	if _, err := AddMember("bob", conv.ID, "carol", "member"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-admin add should be forbidden, got %v", err)
	}
	if err := RemoveMember("bob", conv.ID, "alice"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-admin remove of another should be forbidden, got %v", err)
	}
	// a member may leave on their own
	if err := RemoveMember("bob", conv.ID, "bob"); err != nil {
		t.Fatalf("self-removal: %v", err)
	}
}

func TestDirectRosterIsImmutable(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "direct", []string{"bob"})

	if _, err := AddMember("alice", conv.ID, "carol", "member"); !errs.IsValidation(err) {
		t.Fatalf("direct add should fail validation, got %v", err)
	}
	if err := RemoveMember("alice", conv.ID, "bob"); !errs.IsValidation(err) {
		t.Fatalf("direct remove should fail validation, got %v", err)
	}
}

func TestListConversationsOrderAndIsolation(t *testing.T) {
	openTestStore(t)
	convA := mustCreate(t, "alice", "group", []string{"bob"})
	convB := mustCreate(t, "alice", "group", nil)
	_ = mustCreate(t, "carol", "group", nil) // not alice's

	mustSend(t, "alice", convA.ID, "older")
	mustSend(t, "alice", convB.ID, "newer")

	out, err := ListConversations("alice", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected alice's two conversations, got %+v", out)
	}
	if out[0].ID != convB.ID || out[1].ID != convA.ID {
		t.Fatalf("expected most recent first: %+v", out)
	}
	if out[0].LastMessage == nil || out[0].LastMessage.Content != "newer" {
		t.Fatalf("preview missing: %+v", out[0].LastMessage)
	}
}

func TestReactionFlow(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})
	msg := mustSend(t, "alice", conv.ID, "react to me")

	if _, _, err := AddReaction("bob", conv.ID, msg.ID, "  "); !errs.IsValidation(err) {
		t.Fatalf("blank reaction should fail validation, got %v", err)
	}
	if _, _, err := AddReaction("bob", conv.ID, "msg-missing", "+1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("reaction on missing message should be not found, got %v", err)
	}

	_, created, err := AddReaction("bob", conv.ID, msg.ID, "+1")
	if err != nil || !created {
		t.Fatalf("add: created=%v err=%v", created, err)
	}
	_, created, err = AddReaction("bob", conv.ID, msg.ID, "+1")
	if err != nil || created {
		t.Fatalf("duplicate add should return existing: created=%v err=%v", created, err)
	}
	if _, _, err := AddReaction("alice", conv.ID, msg.ID, "+1"); err != nil {
		t.Fatalf("second user add: %v", err)
	}

	counts, err := ListReactions("alice", conv.ID, msg.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 2 || counts[0].Reaction != "+1" {
		t.Fatalf("unexpected aggregate: %+v", counts)
	}

	deleted, err := RemoveReaction("bob", conv.ID, msg.ID, "heart")
	if err != nil {
		t.Fatalf("removing an absent reaction must not be an error, got %v", err)
	}
	if deleted {
		t.Fatalf("absent reaction reported as deleted")
	}
	deleted, err = RemoveReaction("bob", conv.ID, msg.ID, "+1")
	if err != nil || !deleted {
		t.Fatalf("remove: deleted=%v err=%v", deleted, err)
	}
}

func TestDeleteMessagePermissions(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob", "carol"})
	msg := mustSend(t, "bob", conv.ID, "delete me")

	if err := DeleteMessage("carol", conv.ID, msg.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-sender non-admin delete should be forbidden, got %v", err)
	}
	if err := DeleteMessage("bob", conv.ID, msg.ID); err != nil {
		t.Fatalf("sender delete: %v", err)
	}
}

func TestDeletedMessageContentHiddenInListing(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})
	msg := mustSend(t, "bob", conv.ID, "secret payroll numbers")

	if err := DeleteMessage("bob", conv.ID, msg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err := ListMessages("alice", conv.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || !out[0].Deleted {
		t.Fatalf("expected a single tombstone, got %+v", out)
	}
	if out[0].Content != "" || len(out[0].Attachments) != 0 {
		t.Fatalf("deleted message leaked content: %+v", out[0])
	}
}

func TestSearchScopesAndFilters(t *testing.T) {
	openTestStore(t)
	convA := mustCreate(t, "alice", "group", []string{"bob"})
	convB := mustCreate(t, "carol", "group", nil) // alice is not a member

	mustSend(t, "alice", convA.ID, "quarterly Budget review")
	deleted := mustSend(t, "bob", convA.ID, "budget draft to drop")
	mustSend(t, "carol", convB.ID, "budget secrets")

	if err := DeleteMessage("bob", convA.ID, deleted.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := SearchMessages("alice", "   ", 1, 10); !errs.IsValidation(err) {
		t.Fatalf("blank query should fail validation, got %v", err)
	}

	out, err := SearchMessages("alice", "bUdGeT", 1, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly the visible live match, got %+v", out)
	}
	if out[0].Content != "quarterly Budget review" {
		t.Fatalf("unexpected match: %+v", out[0])
	}
}

func TestSearchLosesAccessAfterRemoval(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})
	mustSend(t, "alice", conv.ID, "project phoenix kickoff")

	out, err := SearchMessages("bob", "phoenix", 1, 10)
	if err != nil || len(out) != 1 {
		t.Fatalf("member search: out=%v err=%v", out, err)
	}

	if err := RemoveMember("alice", conv.ID, "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, err = SearchMessages("bob", "phoenix", 1, 10)
	if err != nil {
		t.Fatalf("search after removal: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("removed member must see nothing, got %+v", out)
	}
}

func TestTypingRequiresMembership(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob"})

	if err := SetTyping("mallory", conv.ID, true); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("outsider typing should be forbidden, got %v", err)
	}
	if err := SetTyping("bob", conv.ID, true); err != nil {
		t.Fatalf("set typing: %v", err)
	}
	out, err := ActiveTypers("alice", conv.ID)
	if err != nil || len(out) != 1 || out[0].User != "bob" {
		t.Fatalf("active typers: out=%v err=%v", out, err)
	}
	// the requester never sees themselves
	out, err = ActiveTypers("bob", conv.ID)
	if err != nil || len(out) != 0 {
		t.Fatalf("self should be excluded: out=%v err=%v", out, err)
	}
}

func TestGetConversationHydratesRoster(t *testing.T) {
	openTestStore(t)
	conv := mustCreate(t, "alice", "group", []string{"bob@corp.example"})

	v, err := GetConversation("alice", conv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(v.Members) != 2 {
		t.Fatalf("roster size: %+v", v.Members)
	}
	for _, m := range v.Members {
		if m.User.ID == "bob@corp.example" && m.User.DisplayName != "bob" {
			t.Fatalf("fallback display name not derived: %+v", m.User)
		}
	}
}

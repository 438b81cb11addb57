package store

import (
	"testing"
	"time"

	"chatcore/pkg/models"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestConversationRoundTrip(t *testing.T) {
	openTestStore(t)

	c := models.Conversation{ID: "conv-1", Name: "ops", Type: models.ConversationGroup, CreatedBy: "alice", CreatedTS: 1}
	if err := SaveConversation(c); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := GetConversation("conv-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Name != "ops" || got.Type != models.ConversationGroup {
		t.Fatalf("unexpected row: %+v", got)
	}

	if _, ok, err := GetConversation("conv-missing"); err != nil || ok {
		t.Fatalf("missing conversation should be ok=false err=nil, got ok=%v err=%v", ok, err)
	}
}

func TestTouchLastMessageMonotonic(t *testing.T) {
	openTestStore(t)

	c := models.Conversation{ID: "conv-1", Type: models.ConversationGroup, CreatedTS: 1}
	if err := SaveConversation(c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := TouchLastMessage("conv-1", 100); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := TouchLastMessage("conv-1", 50); err != nil {
		t.Fatalf("touch older: %v", err)
	}
	got, _, _ := GetConversation("conv-1")
	if got.LastMessageTS != 100 {
		t.Fatalf("marker went backwards: %d", got.LastMessageTS)
	}
}

func TestTimelineOrderAndCursor(t *testing.T) {
	openTestStore(t)

	for i := 1; i <= 5; i++ {
		m := models.Message{
			ID:           "msg-" + string(rune('0'+i)),
			Conversation: "conv-1",
			Sender:       "alice",
			Content:      "hello",
			Type:         models.MessageText,
			TS:           int64(i * 1000),
		}
		if err := AppendMessage(m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// newest-first, bounded by limit
	out, err := ListMessagesBefore("conv-1", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].TS != 5000 || out[1].TS != 4000 {
		t.Fatalf("unexpected page: %+v", out)
	}

	// before is exclusive: ts==3000 is not returned
	out, err = ListMessagesBefore("conv-1", 10, 3000)
	if err != nil {
		t.Fatalf("list before: %v", err)
	}
	if len(out) != 2 || out[0].TS != 2000 || out[1].TS != 1000 {
		t.Fatalf("cursor not exclusive: %+v", out)
	}
}

func TestSameTimestampKeepsBothMessages(t *testing.T) {
	openTestStore(t)

	ts := time.Now().UnixNano()
	for _, id := range []string{"msg-a", "msg-b"} {
		m := models.Message{ID: id, Conversation: "conv-1", Sender: "alice", Content: "x", Type: models.MessageText, TS: ts}
		if err := AppendMessage(m); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	out, err := ListMessagesBefore("conv-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("timestamp collision lost a message: %+v", out)
	}
}

func TestGetMessageByID(t *testing.T) {
	openTestStore(t)

	m := models.Message{ID: "msg-1", Conversation: "conv-1", Sender: "alice", Content: "hi", Type: models.MessageText, TS: 1}
	if err := AppendMessage(m); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, ok, err := GetMessage("msg-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Content != "hi" {
		t.Fatalf("unexpected message: %+v", got)
	}

	changed, err := MarkMessageDeleted("msg-1")
	if err != nil || !changed {
		t.Fatalf("delete: changed=%v err=%v", changed, err)
	}
	got, _, _ = GetMessage("msg-1")
	if !got.Deleted {
		t.Fatalf("deleted flag not set: %+v", got)
	}
	// idempotent
	if changed, err := MarkMessageDeleted("msg-1"); err != nil || !changed {
		t.Fatalf("second delete: changed=%v err=%v", changed, err)
	}
}

func TestMemberRowsAndIndex(t *testing.T) {
	openTestStore(t)

	m := models.Member{Conversation: "conv-1", User: "alice", Role: models.RoleAdmin, Active: true, JoinedTS: 1}
	if err := PutMember(m); err != nil {
		t.Fatalf("put: %v", err)
	}
	ids, err := ListConversationIDsForUser("alice")
	if err != nil || len(ids) != 1 || ids[0] != "conv-1" {
		t.Fatalf("index lookup: ids=%v err=%v", ids, err)
	}

	updated, err := UpdateMember("conv-1", "alice", func(m *models.Member) { m.Active = false })
	if err != nil || !updated {
		t.Fatalf("update: updated=%v err=%v", updated, err)
	}
	got, ok, _ := GetMember("conv-1", "alice")
	if !ok || got.Active {
		t.Fatalf("deactivation lost: %+v", got)
	}

	if updated, err := UpdateMember("conv-1", "nobody", func(m *models.Member) {}); err != nil || updated {
		t.Fatalf("update of missing row should report false, got updated=%v err=%v", updated, err)
	}
}

func TestReactionIdempotence(t *testing.T) {
	openTestStore(t)

	r := models.Reaction{Message: "msg-1", User: "alice", Reaction: "+1", TS: 1}
	_, created, err := AddReaction(r)
	if err != nil || !created {
		t.Fatalf("first add: created=%v err=%v", created, err)
	}
	_, created, err = AddReaction(r)
	if err != nil || created {
		t.Fatalf("duplicate add should be a no-op: created=%v err=%v", created, err)
	}
	rows, err := ListReactions("msg-1")
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected single row: rows=%v err=%v", rows, err)
	}

	deleted, err := RemoveReaction("msg-1", "alice", "+1")
	if err != nil || !deleted {
		t.Fatalf("remove: deleted=%v err=%v", deleted, err)
	}
	deleted, err = RemoveReaction("msg-1", "alice", "+1")
	if err != nil || deleted {
		t.Fatalf("second remove should find nothing: deleted=%v err=%v", deleted, err)
	}
}

func TestSystemKeys(t *testing.T) {
	openTestStore(t)

	if _, ok, err := GetSystem("version"); err != nil || ok {
		t.Fatalf("fresh store should have no version: ok=%v err=%v", ok, err)
	}
	if err := SetSystem("version", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := GetSystem("version")
	if err != nil || !ok || v != "2" {
		t.Fatalf("get: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := DelSystem("version"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, ok, _ := GetSystem("version"); ok {
		t.Fatalf("version should be gone")
	}
}

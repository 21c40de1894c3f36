package vault

import (
	"path/filepath"
	"strings"
	"testing"
)

func testVault(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func seedMessage(t *testing.T, db *DB, guid, text string) {
	t.Helper()

	if err := db.UpsertConversation(&Conversation{ID: 1, Name: "Alice"}); err != nil {
		t.Fatalf("UpsertConversation() error = %v", err)
	}
	if err := db.UpsertMessage(&Message{
		GUID:           guid,
		ConversationID: 1,
		Sender:         "Alice",
		SentAt:         1700000000000,
		Kind:           "normal",
	}); err != nil {
		t.Fatalf("UpsertMessage() error = %v", err)
	}
	if err := db.ReplaceSegments(guid, []Segment{{Index: 0, Kind: "text", Content: text}}); err != nil {
		t.Fatalf("ReplaceSegments() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	result, err := db.Migrate()
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if result.Version != 2 {
		t.Errorf("Version = %d, want 2", result.Version)
	}
	if result.Dirty {
		t.Error("fresh migration should not be dirty")
	}
	if !result.Changed {
		t.Error("first Migrate() should report Changed")
	}

	again, err := db.Migrate()
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if again.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if again.Version != 2 {
		t.Errorf("second Version = %d, want 2", again.Version)
	}
}

func TestUpsertMessageIdempotent(t *testing.T) {
	db := testVault(t)
	seedMessage(t, db, "msg-1", "hello")

	if err := db.UpsertMessage(&Message{
		GUID:           "msg-1",
		ConversationID: 1,
		Sender:         "Alice",
		SentAt:         1700000000000,
		Kind:           "normal",
		Edited:         true,
	}); err != nil {
		t.Fatalf("second UpsertMessage() error = %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("messages rows = %d, want 1", count)
	}

	var edited bool
	if err := db.QueryRow(`SELECT edited FROM messages WHERE guid = ?`, "msg-1").Scan(&edited); err != nil {
		t.Fatalf("select error = %v", err)
	}
	if !edited {
		t.Error("upsert should have updated edited flag")
	}
}

func TestReplaceSegments(t *testing.T) {
	db := testVault(t)
	seedMessage(t, db, "msg-1", "first")

	err := db.ReplaceSegments("msg-1", []Segment{
		{Index: 0, Kind: "text", Content: "rewritten"},
		{Index: 1, Kind: "attachment", Content: ""},
	})
	if err != nil {
		t.Fatalf("ReplaceSegments() error = %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM message_segments WHERE message_guid = ?`, "msg-1").Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 2 {
		t.Errorf("segment rows = %d, want 2", count)
	}

	// The delete trigger must drop the stale FTS row.
	stale, err := db.Search("first", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("stale segment still searchable: %+v", stale)
	}
}

func TestSearch(t *testing.T) {
	db := testVault(t)
	seedMessage(t, db, "msg-1", "the quick brown fox")
	seedMessage(t, db, "msg-2", "nothing relevant here")

	results, err := db.Search("quick", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	got := results[0]
	if got.MessageGUID != "msg-1" {
		t.Errorf("MessageGUID = %q, want msg-1", got.MessageGUID)
	}
	if got.ConversationName != "Alice" {
		t.Errorf("ConversationName = %q, want Alice", got.ConversationName)
	}
	if !strings.Contains(got.Snippet, "[quick]") {
		t.Errorf("Snippet = %q, want hit marked with [quick]", got.Snippet)
	}
}

func TestRunLifecycle(t *testing.T) {
	db := testVault(t)

	run := &Run{
		ID:         "run-1",
		SourcePath: "/tmp/chat.db",
		Platform:   "macos",
	}
	if err := db.BeginRun(run); err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}

	run.Conversations = 3
	run.Messages = 42
	run.Attachments = 5
	run.DecodeFailures = 1
	if err := db.FinishRun(run); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	var finished, messages int64
	err := db.QueryRow(`SELECT finished_at, messages FROM export_runs WHERE id = ?`, "run-1").
		Scan(&finished, &messages)
	if err != nil {
		t.Fatalf("select run error = %v", err)
	}
	if finished == 0 {
		t.Error("finished_at not stamped")
	}
	if messages != 42 {
		t.Errorf("messages = %d, want 42", messages)
	}
}

func TestUpsertReaction(t *testing.T) {
	db := testVault(t)
	seedMessage(t, db, "msg-1", "hello")

	r := &Reaction{MessageGUID: "msg-1", Kind: "loved", Sender: "Bob", SentAt: 1}
	if err := db.UpsertReaction(r); err != nil {
		t.Fatalf("UpsertReaction() error = %v", err)
	}
	r.Removed = true
	r.SentAt = 2
	if err := db.UpsertReaction(r); err != nil {
		t.Fatalf("second UpsertReaction() error = %v", err)
	}

	var count int
	var removed bool
	if err := db.QueryRow(`SELECT COUNT(*) FROM reactions`).Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("reaction rows = %d, want 1", count)
	}
	if err := db.QueryRow(`SELECT removed FROM reactions WHERE message_guid = ?`, "msg-1").Scan(&removed); err != nil {
		t.Fatalf("select error = %v", err)
	}
	if !removed {
		t.Error("upsert should have updated removed flag")
	}
}

func TestLinkParticipantIdempotent(t *testing.T) {
	db := testVault(t)

	if err := db.UpsertConversation(&Conversation{ID: 1, Name: "Group"}); err != nil {
		t.Fatalf("UpsertConversation() error = %v", err)
	}
	if err := db.UpsertParticipant(&Participant{ID: 7, Identifier: "+15551234567"}); err != nil {
		t.Fatalf("UpsertParticipant() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.LinkParticipant(1, 7); err != nil {
			t.Fatalf("LinkParticipant() error = %v", err)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM conversation_participants`).Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("link rows = %d, want 1", count)
	}
}

func TestReplaceAttachments(t *testing.T) {
	db := testVault(t)
	seedMessage(t, db, "msg-1", "photo")

	first := []Attachment{
		{SegmentIndex: 0, Filename: "a.jpg", MimeType: "image/jpeg", MediaKind: "image"},
		{SegmentIndex: 1, Filename: "b.mov", MimeType: "video/quicktime", MediaKind: "video"},
	}
	if err := db.ReplaceAttachments("msg-1", first); err != nil {
		t.Fatalf("ReplaceAttachments() error = %v", err)
	}
	second := []Attachment{
		{SegmentIndex: 0, Filename: "a.jpg", MimeType: "image/jpeg", MediaKind: "image"},
	}
	if err := db.ReplaceAttachments("msg-1", second); err != nil {
		t.Fatalf("second ReplaceAttachments() error = %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM attachments WHERE message_guid = ?`, "msg-1").Scan(&count); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("attachment rows = %d, want 1", count)
	}
}

package chatdb

import (
	"database/sql"
	"reflect"
	"testing"
)

func TestDeduplicateChats(t *testing.T) {
	in := map[int64][]int64{
		1: {10, 20},
		2: {20, 10},
		3: {30},
	}
	out := DeduplicateChats(in)

	if out[1] != out[2] {
		t.Errorf("chats 1 and 2 have the same participants but ids %d and %d", out[1], out[2])
	}
	if out[3] == out[1] {
		t.Errorf("chat 3 shares id %d with a different participant set", out[3])
	}

	distinct := make(map[int64]bool)
	for _, id := range out {
		distinct[id] = true
	}
	if len(distinct) != 2 {
		t.Errorf("got %d canonical ids, want 2", len(distinct))
	}
}

func TestDeduplicateChatsOverlapStaysDistinct(t *testing.T) {
	out := DeduplicateChats(map[int64][]int64{
		1: {10, 20},
		2: {10, 20, 30},
	})
	if out[1] == out[2] {
		t.Error("overlapping but non-identical sets were merged")
	}
}

func TestDeduplicateChatsDuplicateHandleRows(t *testing.T) {
	out := DeduplicateChats(map[int64][]int64{
		1: {10, 10, 20},
		2: {20, 10},
	})
	if out[1] != out[2] {
		t.Error("duplicate join rows split one conversation")
	}
}

func TestDeduplicateChatsDeterministic(t *testing.T) {
	in := map[int64][]int64{1: {10, 20}, 2: {20, 10}, 3: {30}, 4: {40, 50}}
	first := DeduplicateChats(in)
	second := DeduplicateChats(in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs disagree: %v vs %v", first, second)
	}
	if first[1] != 0 {
		t.Errorf("lowest chat row got id %d, want 0", first[1])
	}
}

func TestDeduplicateHandles(t *testing.T) {
	pcid := func(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }
	handles := []Handle{
		{RowID: 1, ID: "+15551234567", PersonCentricID: pcid("P1")},
		{RowID: 2, ID: "john@example.com", PersonCentricID: pcid("P1")},
		{RowID: 3, ID: "+15559876543"},
		{RowID: 4, ID: "jane@example.com", PersonCentricID: pcid("")},
	}

	out := DeduplicateHandles(handles)
	if out[1] != out[2] {
		t.Errorf("handles sharing a person_centric_id got ids %d and %d", out[1], out[2])
	}
	if out[3] == out[1] || out[4] == out[1] || out[3] == out[4] {
		t.Errorf("handles without person_centric_id merged: %v", out)
	}

	distinct := make(map[int64]bool)
	for _, id := range out {
		distinct[id] = true
	}
	if len(distinct) != 3 {
		t.Errorf("got %d canonical contacts, want 3", len(distinct))
	}
}

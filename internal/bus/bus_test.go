package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("export.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindChatStarted, Timestamp: time.Now(), Payload: ChatStarted{Name: "Family"}})

	select {
	case evt := <-ch:
		if evt.Kind != KindChatStarted {
			t.Errorf("got kind %q, want %q", evt.Kind, KindChatStarted)
		}
		if p, ok := evt.Payload.(ChatStarted); !ok || p.Name != "Family" {
			t.Errorf("payload = %#v", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("diag.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindMessages})
	b.Publish(Event{Kind: KindDecodeIssue})

	select {
	case evt := <-ch:
		if evt.Kind != KindDecodeIssue {
			t.Errorf("got kind %q, want %q", evt.Kind, KindDecodeIssue)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The export event must not be delivered to a diag subscriber.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmitStampsTimestamp(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("export.", 1)
	defer unsub()

	before := time.Now()
	b.Emit(KindMessages, MessagesExported{Done: 7})

	evt := <-ch
	if evt.Timestamp.Before(before) {
		t.Errorf("timestamp %v predates Emit", evt.Timestamp)
	}
	if p := evt.Payload.(MessagesExported); p.Done != 7 {
		t.Errorf("payload = %+v", p)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("export.", 10)
	unsub()

	b.Publish(Event{Kind: KindMessages})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("export.", 1)
	defer unsub()

	b.Publish(Event{Kind: KindMessages})
	// Buffer full: dropped, not blocked.
	b.Publish(Event{Kind: KindAttachment})

	evt := <-ch
	if evt.Kind != KindMessages {
		t.Errorf("got %q, want %q", evt.Kind, KindMessages)
	}
}

package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeAndPublish(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("ClientCount = %d, want 1", n)
	}

	b.PublishNoteEvent("created", "hello.md")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.created") {
			t.Errorf("message = %q, missing event type", s)
		}
		if !strings.Contains(s, `"filename":"hello.md"`) {
			t.Errorf("message = %q, missing payload", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}

	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d, want 0", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()

	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel should be closed after Close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount after close = %d", n)
	}
	// Publishing after close must not panic or block.
	b.PublishNoteEvent("updated", "x.md")
}

func TestSlowClientDoesNotBlockBroker(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	slow := b.Subscribe()
	_ = slow // never read

	fast := b.Subscribe()

	// Overflow the slow client's buffer.
	for i := 0; i < 200; i++ {
		b.PublishNoteEvent("updated", "spam.md")
	}

	select {
	case <-fast:
	case <-time.After(2 * time.Second):
		t.Fatal("fast client starved by slow client")
	}
}

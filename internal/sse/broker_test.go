package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/villemin/feuille/internal/docstore"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "export.ready", Data: map[string]string{"documentId": "doc_1"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: export.ready") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"documentId":"doc_1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishStoreEvent_RefreshThrottle(t *testing.T) {
	b := NewBroker(500*time.Millisecond, nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger documents.changed.
	b.PublishStoreEvent(docstore.Event{Kind: docstore.EventDocumentCreated, DocumentID: "doc_1"})
	// Second event immediately should NOT trigger another documents.changed.
	b.PublishStoreEvent(docstore.Event{Kind: docstore.EventDocumentUpdated, DocumentID: "doc_1"})

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	refreshCount := 0
	storeCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "documents.changed") {
				refreshCount++
			} else {
				storeCount++
			}
		default:
			break loop
		}
	}

	if storeCount != 2 {
		t.Errorf("store events = %d, want 2", storeCount)
	}
	if refreshCount != 1 {
		t.Errorf("refresh events = %d, want 1 (throttled)", refreshCount)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishStoreEvent(docstore.Event{Kind: docstore.EventExerciseAdded, DocumentID: "doc_1", ExerciseID: "ex_1"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: "+docstore.EventExerciseAdded) {
		t.Errorf("handler output missing event: %q", body)
	}
	if w.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
}

func TestStoreEventCarriesMessage(t *testing.T) {
	b := NewBroker(100*time.Millisecond, func(ev docstore.Event) string {
		if ev.Kind == docstore.EventDocumentDeleted {
			return `"` + ev.Title + `" deleted.`
		}
		return ""
	})
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishStoreEvent(docstore.Event{Kind: docstore.EventDocumentDeleted, DocumentID: "doc_1", Title: "Quiz"})

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), `deleted.`) {
			t.Errorf("message missing from %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel must be closed after broker shutdown")
	}
	if got := b.Subscribe(); got == nil {
		t.Error("subscribe after close must return a closed channel, not nil")
	}
}

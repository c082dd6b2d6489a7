package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe checks events reach a subscriber with a timestamp.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.Publish(userID, Event{Type: EventExpenseCreated})

	select {
	case event := <-ch:
		if event.Type != EventExpenseCreated {
			t.Fatalf("expected event type %s, got %s", EventExpenseCreated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubUnsubscribe checks the channel closes after unsubscribing.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}

// TestHubPublishToMany checks group fan-out deduplicates recipients.
func TestHubPublishToMany(t *testing.T) {
	hub := NewHub()
	first := uuid.New()
	second := uuid.New()

	firstCh, unsubFirst := hub.Subscribe(first)
	defer unsubFirst()
	secondCh, unsubSecond := hub.Subscribe(second)
	defer unsubSecond()

	hub.PublishToMany([]uuid.UUID{first, second, first}, Event{Type: EventGroupUpdated})

	for _, ch := range []<-chan Event{firstCh, secondCh} {
		select {
		case event := <-ch:
			if event.Type != EventGroupUpdated {
				t.Fatalf("expected event type %s, got %s", EventGroupUpdated, event.Type)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatal("expected event to be delivered")
		}
	}

	select {
	case event := <-firstCh:
		t.Fatalf("unexpected duplicate event %s", event.Type)
	default:
	}
}

package feed

import (
	"testing"
	"time"

	"github.com/flori92/floservice-messaging/internal/models"
)

func TestPublishReachesRecipientSubscriber(t *testing.T) {
	f := New()
	ch, unsub := f.Subscribe("tg-2", 10)
	defer unsub()

	f.Publish(models.Message{ID: 1, RecipientID: "tg-2", Content: "Bonjour"})

	select {
	case msg := <-ch:
		if msg.Content != "Bonjour" {
			t.Errorf("got content %q, want Bonjour", msg.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestRecipientFiltering(t *testing.T) {
	f := New()
	ch, unsub := f.Subscribe("tg-2", 10)
	defer unsub()

	f.Publish(models.Message{ID: 1, RecipientID: "tg-3"})
	f.Publish(models.Message{ID: 2, RecipientID: "tg-2"})

	select {
	case msg := <-ch:
		if msg.ID != 2 {
			t.Errorf("got message %d, want 2", msg.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	select {
	case msg := <-ch:
		t.Errorf("unexpected message: %v", msg)
	case <-time.After(50 * time.Millisecond):
		// Expected: nothing else addressed to tg-2.
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	f := New()
	ch, unsub := f.Subscribe("tg-2", 10)
	unsub()

	f.Publish(models.Message{ID: 1, RecipientID: "tg-2"})

	select {
	case msg := <-ch:
		t.Errorf("received message after unsubscribe: %v", msg)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}

	if f.Subscribers() != 0 {
		t.Errorf("got %d subscribers, want 0", f.Subscribers())
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	f := New()
	ch, unsub := f.Subscribe("tg-2", 1)
	defer unsub()

	f.Publish(models.Message{ID: 1, RecipientID: "tg-2"})
	// Dropped: the live channel is at-most-once, List catches the client up.
	f.Publish(models.Message{ID: 2, RecipientID: "tg-2"})

	msg := <-ch
	if msg.ID != 1 {
		t.Errorf("got message %d, want 1", msg.ID)
	}
}

func TestEachSubscriberGetsOneCopy(t *testing.T) {
	f := New()
	ch1, unsub1 := f.Subscribe("tg-2", 10)
	defer unsub1()
	ch2, unsub2 := f.Subscribe("tg-2", 10)
	defer unsub2()

	f.Publish(models.Message{ID: 7, RecipientID: "tg-2"})

	for _, ch := range []<-chan models.Message{ch1, ch2} {
		select {
		case msg := <-ch:
			if msg.ID != 7 {
				t.Errorf("got message %d, want 7", msg.ID)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

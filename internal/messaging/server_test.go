package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/pixil98/go-arena/internal/session"
	"github.com/pixil98/go-testutil"
)

func TestNatsServer_PublishSubscribe(t *testing.T) {
	ns, err := NewNatsServer(WithPort(-1), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	if err := ns.Publish("before.start", []byte("x")); err == nil {
		t.Error("expected error publishing before start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ns.Start(ctx)
	}()

	select {
	case <-ns.Ready():
	case err := <-errCh:
		t.Fatalf("server stopped: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server not ready")
	}

	received := make(chan []byte, 1)
	unsub, err := ns.Subscribe(AllEventsSubject("arena"), func(data []byte) {
		received <- data
	})
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer unsub()

	NewEventPublisher(ns, "arena").PublishEvent(session.Event{Kind: session.EventMoved, Player: "alice", X: 1, Y: 2})

	select {
	case data := <-received:
		testutil.AssertEqual(t, "contains kind", len(data) > 0, true)
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

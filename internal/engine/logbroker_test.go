package engine_test

import (
	"testing"

	"github.com/seantiz/switchyard/internal/engine"
	"github.com/seantiz/switchyard/internal/model"
)

func entry(msg string) model.LogEntry {
	return model.LogEntry{ID: model.NewID(), Message: msg}
}

func TestLogBrokerSingleSubscriber(t *testing.T) {
	b := engine.NewLogBroker()
	ch, unsub := b.Subscribe()
	defer unsub()

	lines := []string{"line 1", "line 2", "line 3"}
	for _, l := range lines {
		b.Publish(entry(l))
	}
	b.Close()

	var got []string
	for e := range ch {
		got = append(got, e.Message)
	}

	if len(got) != len(lines) {
		t.Fatalf("got %d entries, want %d", len(got), len(lines))
	}
	for i, l := range got {
		if l != lines[i] {
			t.Errorf("entry[%d] = %q, want %q", i, l, lines[i])
		}
	}
}

func TestLogBrokerMultipleSubscribers(t *testing.T) {
	b := engine.NewLogBroker()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(entry("hello"))
	b.Close()

	var got1, got2 []string
	for e := range ch1 {
		got1 = append(got1, e.Message)
	}
	for e := range ch2 {
		got2 = append(got2, e.Message)
	}

	if len(got1) != 1 || got1[0] != "hello" {
		t.Errorf("subscriber 1 got %v, want [hello]", got1)
	}
	if len(got2) != 1 || got2[0] != "hello" {
		t.Errorf("subscriber 2 got %v, want [hello]", got2)
	}
}

func TestLogBrokerLateSubscriberGetsClosed(t *testing.T) {
	b := engine.NewLogBroker()
	b.Publish(entry("early"))
	b.Close()

	ch, unsub := b.Subscribe()
	defer unsub()

	if _, ok := <-ch; ok {
		t.Error("late subscriber should get a closed channel")
	}
}

func TestLogBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := engine.NewLogBroker()
	ch, unsub := b.Subscribe()
	unsub()

	b.Publish(entry("after unsub"))
	b.Close()

	select {
	case e, ok := <-ch:
		if ok {
			t.Errorf("got unexpected entry %q after unsubscribe", e.Message)
		}
	default:
	}
}

func TestLogBrokerDropsForSlowSubscriber(t *testing.T) {
	b := engine.NewLogBroker()
	ch, unsub := b.Subscribe()
	defer unsub()

	// Publishing past the buffer must not block.
	for range 200 {
		b.Publish(entry("x"))
	}
	b.Close()

	n := 0
	for range ch {
		n++
	}
	if n != 64 {
		t.Errorf("delivered %d entries, want buffer size 64", n)
	}
}

func TestLogBrokerDoubleCloseIsNoop(t *testing.T) {
	b := engine.NewLogBroker()
	b.Close()
	b.Close()
	b.Publish(entry("ignored"))
}

func TestLogBrokerSubscriberCount(t *testing.T) {
	b := engine.NewLogBroker()
	_, unsub1 := b.Subscribe()
	_, unsub2 := b.Subscribe()

	if got := b.SubscriberCount(); got != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", got)
	}
	unsub1()
	if got := b.SubscriberCount(); got != 1 {
		t.Errorf("after unsubscribe = %d, want 1", got)
	}
	b.Close()
	unsub2()
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("after close = %d, want 0", got)
	}
}

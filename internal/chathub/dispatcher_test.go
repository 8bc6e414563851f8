package chathub_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"chatrelay/backend/internal/chathub"
)

func newDispatcher(t *testing.T, registry *chathub.Registry) *chathub.Dispatcher {
	t.Helper()
	d := chathub.NewDispatcher(registry, zerolog.Nop())
	t.Cleanup(d.Close)
	return d
}

func textEvent(s string) chathub.Event {
	return chathub.Event{Kind: "chat_message", Data: []byte(s)}
}

func TestDispatcher_DeliversToEveryMember(t *testing.T) {
	registry := chathub.NewRegistry()
	dispatcher := newDispatcher(t, registry)

	a, b := newMockClient(), newMockClient()
	registry.Join(testRoom, a)
	registry.Join(testRoom, b)

	dispatcher.Publish(testRoom, textEvent("hello"))

	assert.Equal(t, "hello", string(recvEvent(t, a.Recv, time.Second).Data))
	assert.Equal(t, "hello", string(recvEvent(t, b.Recv, time.Second).Data))
}

func TestDispatcher_PreservesPublishOrderPerMember(t *testing.T) {
	registry := chathub.NewRegistry()
	dispatcher := newDispatcher(t, registry)

	client := newMockClient()
	registry.Join(testRoom, client)

	for i := 0; i < 10; i++ {
		dispatcher.Publish(testRoom, textEvent(fmt.Sprintf("ev-%d", i)))
	}

	for i := 0; i < 10; i++ {
		got := recvEvent(t, client.Recv, time.Second)
		assert.Equal(t, fmt.Sprintf("ev-%d", i), string(got.Data))
	}
}

func TestDispatcher_DeadMemberDoesNotBlockOthers(t *testing.T) {
	registry := chathub.NewRegistry()
	dispatcher := newDispatcher(t, registry)

	dead := newMockClient()
	dead.broken = true
	healthy := newMockClient()
	registry.Join(testRoom, dead)
	registry.Join(testRoom, healthy)

	// Publish never returns an error, whatever a member's transport does.
	dispatcher.Publish(testRoom, textEvent("still going"))

	assert.Equal(t, "still going", string(recvEvent(t, healthy.Recv, time.Second).Data))
	assert.Eventually(t, dead.closedSlow.Load, time.Second, 10*time.Millisecond,
		"dead member should get its own disconnect scheduled")
}

func TestDispatcher_ConcurrentPublishersNoLossNoDuplicates(t *testing.T) {
	registry := chathub.NewRegistry()
	dispatcher := newDispatcher(t, registry)

	client := newMockClient()
	client.Recv = make(chan chathub.Event, 256)
	registry.Join(testRoom, client)

	const perSender = 50
	var wg sync.WaitGroup
	for _, sender := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				dispatcher.Publish(testRoom, textEvent(fmt.Sprintf("%s-%d", sender, i)))
			}
		}(sender)
	}
	wg.Wait()

	seen := make(map[string]int)
	for i := 0; i < 2*perSender; i++ {
		seen[string(recvEvent(t, client.Recv, time.Second).Data)]++
	}
	expectNoEvent(t, client.Recv)

	assert.Len(t, seen, 2*perSender)
	for key, count := range seen {
		assert.Equalf(t, 1, count, "event %s delivered %d times", key, count)
	}
}

func TestDispatcher_RoomsAreIndependent(t *testing.T) {
	registry := chathub.NewRegistry()
	dispatcher := newDispatcher(t, registry)

	a, b := newMockClient(), newMockClient()
	registry.Join("room_a", a)
	registry.Join("room_b", b)

	dispatcher.Publish("room_a", textEvent("only-a"))

	assert.Equal(t, "only-a", string(recvEvent(t, a.Recv, time.Second).Data))
	expectNoEvent(t, b.Recv)
}

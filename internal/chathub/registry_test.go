package chathub_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatrelay/backend/internal/chathub"
)

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	registry := chathub.NewRegistry()
	client := newMockClient()

	registry.Join(testRoom, client)
	registry.Join(testRoom, client)

	assert.Equal(t, 1, registry.Size(testRoom))
	assert.Len(t, registry.Members(testRoom), 1)
}

func TestRegistry_LeaveUnknownMemberIsNoOp(t *testing.T) {
	registry := chathub.NewRegistry()

	// Disconnect can race a failed connect; neither of these may panic
	// or error.
	registry.Leave(testRoom, newMockClient())
	registry.Leave("never_created", newMockClient())

	assert.Equal(t, 0, registry.Size(testRoom))
}

func TestRegistry_MembersIsASnapshot(t *testing.T) {
	registry := chathub.NewRegistry()
	a, b := newMockClient(), newMockClient()
	registry.Join(testRoom, a)
	registry.Join(testRoom, b)

	snapshot := registry.Members(testRoom)
	registry.Leave(testRoom, a)
	registry.Leave(testRoom, b)

	// The snapshot taken before the removals is unaffected by them.
	assert.Len(t, snapshot, 2)
	assert.Empty(t, registry.Members(testRoom))
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	registry := chathub.NewRegistry()

	const n = 64
	clients := make([]*mockClient, n)
	for i := range clients {
		clients[i] = newMockClient()
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			registry.Join(testRoom, clients[i])
			registry.Members(testRoom)
			if i%2 == 0 {
				registry.Leave(testRoom, clients[i])
			}
		}(i)
	}
	wg.Wait()

	// Odd-indexed clients stayed; every membership record is whole.
	assert.Equal(t, n/2, registry.Size(testRoom))
}

package chathub_test

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatrelay/backend/internal/chathub"
	"chatrelay/backend/internal/jobs"
	"chatrelay/backend/internal/models"
)

const testRoom = "global_chat"

// MockStore is a testify mock of the storage.MessageStore interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStore) RecentMessages(limit int) ([]models.Message, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStore) DeleteMessagesBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockRunner is a testify mock of the jobs.Runner interface.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Submit(job jobs.Job) error {
	args := m.Called(job)
	return args.Error(0)
}

// mockClient is a test double for the chathub.Client interface. Delivered
// events land in the buffered Recv channel; a broken client refuses every
// delivery, like a member whose send buffer is full.
type mockClient struct {
	Recv       chan chathub.Event
	broken     bool
	closedSlow atomic.Bool
}

func newMockClient() *mockClient {
	return &mockClient{Recv: make(chan chathub.Event, 32)}
}

func (c *mockClient) Deliver(ev chathub.Event) bool {
	if c.broken {
		return false
	}
	select {
	case c.Recv <- ev:
		return true
	default:
		return false
	}
}

func (c *mockClient) CloseSlow() {
	c.closedSlow.Store(true)
}

// recvEvent waits for one delivered event or fails the test.
func recvEvent(t *testing.T, ch <-chan chathub.Event, within time.Duration) chathub.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(within):
		t.Fatalf("no event delivered within %v", within)
		return chathub.Event{}
	}
}

// expectNoEvent asserts that nothing is delivered for a grace period.
func expectNoEvent(t *testing.T, ch <-chan chathub.Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected %s event: %s", ev.Kind, ev.Data)
	case <-time.After(150 * time.Millisecond):
	}
}

// decodeEvent unmarshals a delivered envelope for field assertions.
func decodeEvent(t *testing.T, ev chathub.Event) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(ev.Data, &m))
	return m
}

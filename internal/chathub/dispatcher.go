package chathub

import (
	"sync"

	"github.com/rs/zerolog"
)

// roomQueueSize is the per-room event backlog. Publish blocks only if a
// room falls this far behind, which in practice means the process is
// already unhealthy; individual slow members never back the queue up
// because delivery to them is non-blocking.
const roomQueueSize = 256

// Dispatcher fans events out to room members. Each room gets one ordered
// queue drained by a single goroutine, so two events published in
// sequence by the same session reach every member in that order, and
// rooms never contend with each other.
type Dispatcher struct {
	registry *Registry
	log      zerolog.Logger

	mu    sync.Mutex
	rooms map[string]chan Event

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDispatcher Constructor
func NewDispatcher(registry *Registry, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		log:      log.With().Str("component", "dispatcher").Logger(),
		rooms:    make(map[string]chan Event),
		stop:     make(chan struct{}),
	}
}

// Publish enqueues the event on the room's ordered queue. Delivery is
// attempted to the membership snapshot taken when the room worker picks
// the event up; a dead member never fails the publish and never blocks
// delivery to anyone else.
func (d *Dispatcher) Publish(room string, ev Event) {
	select {
	case <-d.stop:
		return
	default:
	}
	d.queueFor(room) <- ev
}

// Close drains nothing: it stops every room worker and waits for them.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}

func (d *Dispatcher) queueFor(room string) chan Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, ok := d.rooms[room]
	if !ok {
		q = make(chan Event, roomQueueSize)
		d.rooms[room] = q
		d.wg.Add(1)
		go d.fanOut(room, q)
	}
	return q
}

// fanOut is the single dispatch worker for one room — the serialization
// point the ordering guarantee relies on.
func (d *Dispatcher) fanOut(room string, q chan Event) {
	defer d.wg.Done()

	for {
		select {
		case <-d.stop:
			return
		case ev := <-q:
			for _, c := range d.registry.Members(room) {
				if !c.Deliver(ev) {
					d.log.Warn().
						Str("room", room).
						Str("event", ev.Kind).
						Msg("member not keeping up, scheduling disconnect")
					c.CloseSlow()
				}
			}
		}
	}
}

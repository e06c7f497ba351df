package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/atikulmunna/logtally/internal/output"
)

const subscriberBuffer = 16

// Snapshot is the outcome of one pipeline run as pushed to subscribers.
// Exactly one of Report and Error is set.
type Snapshot struct {
	Report *output.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
	At     time.Time      `json:"at"`
}

// NewSnapshot wraps a run result. A failed run carries no report.
func NewSnapshot(rep output.Report, err error) Snapshot {
	s := Snapshot{At: time.Now().UTC()}
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Report = &rep
	return s
}

// Hub receives snapshots and broadcasts them to all subscribers. New
// subscribers first receive the latest snapshot.
type Hub struct {
	input       <-chan Snapshot
	logger      *slog.Logger
	mu          sync.RWMutex
	subscribers map[chan Snapshot]struct{}
	latest      *Snapshot
	dropped     int64
}

// New creates a Hub that reads from the input channel. A nil logger uses slog.Default().
func New(input <-chan Snapshot, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		input:       input,
		logger:      logger,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Subscribe returns a buffered channel that will receive snapshots.
// Call Unsubscribe with the same channel when done.
func (h *Hub) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest != nil {
		ch <- *h.latest
	}
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		if ch == sub {
			delete(h.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Latest returns the most recent snapshot, if any.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns the total number of snapshots dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Start begins reading from the input channel and broadcasting.
// Blocks until the context is cancelled or the input channel is closed.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-h.input:
			if !ok {
				return
			}
			h.broadcast(snap)
		}
	}
}

// broadcast sends a snapshot to all subscribers.
// If a subscriber's channel is full, the snapshot is dropped for that subscriber.
func (h *Hub) broadcast(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &snap
	for ch := range h.subscribers {
		select {
		case ch <- snap:
		default:
			h.dropped++
			h.logger.Warn("hub: dropped snapshot for slow consumer", "dropped", h.dropped)
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan Snapshot]struct{})
}

package managers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/clock"
	"github.com/chrissnell/waqt/internal/engine"
)

// DefaultTickInterval is how often a snapshot is computed
const DefaultTickInterval = time.Second

// subscriberBuffer is the number of snapshots a slow subscriber may lag
// behind before ticks are dropped for it
const subscriberBuffer = 4

// TickManager computes a snapshot on every tick and fans it out to
// subscribers
type TickManager struct {
	engine   *engine.Engine
	clock    clock.Clock
	interval time.Duration
	logger   *zap.SugaredLogger

	mu          sync.RWMutex
	latest      *engine.Snapshot
	subscribers map[int]chan engine.Snapshot
	nextID      int
}

// NewTickManager creates a TickManager. A zero interval means one second.
func NewTickManager(e *engine.Engine, c clock.Clock, interval time.Duration, logger *zap.SugaredLogger) *TickManager {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if c == nil {
		c = clock.Wall{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TickManager{
		engine:      e,
		clock:       c,
		interval:    interval,
		logger:      logger,
		subscribers: make(map[int]chan engine.Snapshot),
	}
}

// Subscribe returns a channel receiving every snapshot and a function that
// ends the subscription. The channel is closed when the subscription ends or
// the manager stops.
func (t *TickManager) Subscribe() (<-chan engine.Snapshot, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan engine.Snapshot, subscriberBuffer)
	t.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if sub, ok := t.subscribers[id]; ok {
				delete(t.subscribers, id)
				close(sub)
			}
		})
	}
}

// Latest returns the most recent snapshot, if a tick has run
func (t *TickManager) Latest() (engine.Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.latest == nil {
		return engine.Snapshot{}, false
	}
	return *t.latest, true
}

// Start runs the tick loop until ctx is cancelled
func (t *TickManager) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer t.closeAll()

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		t.Tick()
		for {
			select {
			case <-ticker.C:
				t.Tick()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Tick computes one snapshot and distributes it
func (t *TickManager) Tick() engine.Snapshot {
	snap := t.engine.Snapshot(t.clock.Now())

	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest = &snap

	for id, ch := range t.subscribers {
		select {
		case ch <- snap:
		default:
			t.logger.Debugw("subscriber lagging, dropping snapshot", "subscriber", id)
		}
	}
	return snap
}

func (t *TickManager) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, ch := range t.subscribers {
		close(ch)
		delete(t.subscribers, id)
	}
}

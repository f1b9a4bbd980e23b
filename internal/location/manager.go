package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/store"
)

// DefaultTTL is how long a resolved location stays fresh
const DefaultTTL = 24 * time.Hour

// Status of the most recent resolution
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// Report is a snapshot of the manager's state
type Report struct {
	Location *Location `json:"location"`
	Status   Status    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Stale    bool      `json:"stale"`
	Override bool      `json:"override"`
}

// Manager owns the current location. It caches resolved locations in the
// store, refreshes them when they expire, and lets a manual choice or a
// debug override take precedence.
type Manager struct {
	ctx      context.Context
	store    store.Store
	resolver *Resolver
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.SugaredLogger

	// DefaultTimezone is used for manual locations given without a zone
	DefaultTimezone string

	mu         sync.RWMutex
	raw        *Location
	override   *Location
	status     Status
	errMsg     string
	stale      bool
	timer      *time.Timer
	refreshing bool
}

// NewManager creates a manager. ctx bounds background refreshes.
func NewManager(ctx context.Context, st store.Store, resolver *Resolver, ttl time.Duration, logger *zap.SugaredLogger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		ctx:             ctx,
		store:           st,
		resolver:        resolver,
		ttl:             ttl,
		now:             time.Now,
		logger:          logger,
		DefaultTimezone: "UTC",
		status:          StatusIdle,
	}
}

// SetNowFunc replaces the manager's time source
func (m *Manager) SetNowFunc(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Start loads the cached location. A missing or expired cache triggers a
// background refresh; a fresh cache schedules one for its expiry.
func (m *Manager) Start() {
	var cached Location
	if store.LoadJSON(m.store, store.KeyLocation, &cached, m.logger) && cached.Validate() == nil {
		m.mu.Lock()
		m.raw = &cached
		m.stale = cached.Expired(m.now(), m.ttl)
		stale := m.stale
		if !stale {
			m.scheduleLocked(cached)
		}
		m.mu.Unlock()

		m.logger.Infow("loaded cached location", "city", cached.City, "source", cached.Source, "stale", stale)
		if !stale {
			return
		}
	}

	go func() {
		if err := m.Refresh(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warnf("initial location refresh failed: %v", err)
		}
	}()
}

// Location returns the effective location: the debug override if set,
// otherwise the resolved or manual one.
func (m *Manager) Location() (Location, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.override != nil {
		return *m.override, true
	}
	if m.raw != nil {
		return *m.raw, true
	}
	return Location{}, false
}

// Resolved returns the cached or manual location, ignoring any override
func (m *Manager) Resolved() (Location, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.raw != nil {
		return *m.raw, true
	}
	return Location{}, false
}

func (m *Manager) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := Report{Status: m.status, Error: m.errMsg, Stale: m.stale, Override: m.override != nil}
	switch {
	case m.override != nil:
		loc := *m.override
		r.Location = &loc
	case m.raw != nil:
		loc := *m.raw
		r.Location = &loc
	}
	return r
}

// Refresh resolves the location now. Concurrent calls collapse into one.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.resolver == nil {
		return fmt.Errorf("no location resolver configured: %w", ErrLocationUnavailable)
	}

	m.mu.Lock()
	if m.refreshing {
		m.mu.Unlock()
		return nil
	}
	m.refreshing = true
	m.status = StatusLoading
	m.errMsg = ""
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.refreshing = false
		m.mu.Unlock()
	}()

	out, err := m.resolver.Resolve(ctx, m.apply, m.apply)
	if err != nil {
		m.mu.Lock()
		m.status = StatusError
		m.errMsg = "Location fetch failed"
		m.mu.Unlock()
		return err
	}

	m.logger.Debugw("location resolved", "request_id", out.RequestID, "ip", out.IP != nil, "device", out.Device != nil)
	return nil
}

func (m *Manager) apply(loc Location) {
	if err := m.store.Write(store.KeyLocation, loc); err != nil {
		m.logger.Warnf("could not cache location: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = &loc
	m.stale = false
	m.status = StatusIdle
	m.errMsg = ""
	m.scheduleLocked(loc)
}

// SetManual stores a user-chosen location. An empty timezone falls back to
// DefaultTimezone.
func (m *Manager) SetManual(lat, lon float64, city, timezone string) (Location, error) {
	if timezone == "" {
		timezone = m.DefaultTimezone
	}

	m.mu.RLock()
	now := m.now()
	m.mu.RUnlock()

	loc := Location{
		Lat:       lat,
		Lon:       lon,
		Timezone:  timezone,
		City:      city,
		Source:    SourceManual,
		Timestamp: now,
	}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}

	m.apply(loc)
	return loc, nil
}

// Clear forgets the cached location
func (m *Manager) Clear() {
	if err := m.store.Delete(store.KeyLocation); err != nil {
		m.logger.Warnf("could not delete cached location: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = nil
	m.stale = false
	m.status = StatusIdle
	m.errMsg = ""
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// SetOverride installs (or, with nil, removes) a debug location that masks
// the real one without touching the cache.
func (m *Manager) SetOverride(o *Location) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o == nil {
		m.override = nil
		return
	}
	loc := *o
	loc.Source = SourceManual
	if loc.City == "" {
		loc.City = "Debug"
	}
	m.override = &loc
}

// scheduleLocked arms the refresh timer for loc's expiry. m.mu must be held.
func (m *Manager) scheduleLocked(loc Location) {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	wait := m.ttl - m.now().Sub(loc.Timestamp)
	if wait <= 0 {
		return
	}

	m.timer = time.AfterFunc(wait, func() {
		m.mu.Lock()
		m.stale = true
		m.mu.Unlock()

		if err := m.Refresh(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warnf("scheduled location refresh failed: %v", err)
		}
	})
}

// Close stops the refresh timer
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Package debugmode applies the persisted debug overrides: a synthetic clock
// and a substitute location.
package debugmode

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/clock"
	"github.com/chrissnell/waqt/internal/location"
	"github.com/chrissnell/waqt/internal/store"
	"github.com/chrissnell/waqt/pkg/solar"
)

// Service owns the debug state
type Service struct {
	store     store.Store
	clock     *clock.Debug
	locations *location.Manager
	logger    *zap.SugaredLogger

	mu sync.Mutex
}

func New(st store.Store, dc *clock.Debug, locations *location.Manager, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{store: st, clock: dc, locations: locations, logger: logger}
}

// Load restores the persisted state. Malformed or invalid state is ignored
// and the defaults stay in place.
func (s *Service) Load() {
	var state clock.DebugState
	if !store.LoadJSON(s.store, store.KeyDebug, &state, s.logger) {
		return
	}
	if err := s.install(state); err != nil {
		s.logger.Warnf("ignoring stored debug state: %v", err)
		s.install(clock.DefaultDebugState(s.clock.Now()))
	}
}

// State returns the active debug state
func (s *Service) State() clock.DebugState {
	return s.clock.State()
}

// Apply validates, activates and persists a new debug state
func (s *Service) Apply(state clock.DebugState) (clock.DebugState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.install(state); err != nil {
		return clock.DebugState{}, err
	}

	applied := s.clock.State()
	if err := s.store.Write(store.KeyDebug, applied); err != nil {
		return applied, fmt.Errorf("persisting debug state: %w", err)
	}
	return applied, nil
}

// JumpTo starts the time override at a named solar event of sd
func (s *Service) JumpTo(key string, sd solar.SolarData) (clock.DebugState, error) {
	at, ok := clock.PresetTime(key, sd)
	if !ok {
		return clock.DebugState{}, fmt.Errorf("unknown time preset %q", key)
	}

	state := s.clock.State()
	state.Enabled = true
	state.TimeOverride.Active = true
	state.TimeOverride.Date = at.Format("2006-01-02")
	state.TimeOverride.Time = at.Format("15:04:05")
	return s.Apply(state)
}

func (s *Service) install(state clock.DebugState) error {
	state = state.Normalize()

	var override *location.Location
	if state.LocationActive() {
		lo := state.LocationOverride
		override = &location.Location{
			Lat:       lo.Lat,
			Lon:       lo.Lon,
			Timezone:  lo.Timezone,
			Source:    location.SourceManual,
			Timestamp: s.clock.Now(),
		}
		if err := override.Validate(); err != nil {
			return fmt.Errorf("invalid location override: %w", err)
		}
	}

	if err := s.clock.Apply(state, s.zone(override)); err != nil {
		return fmt.Errorf("invalid time override: %w", err)
	}
	if s.locations != nil {
		s.locations.SetOverride(override)
	}
	return nil
}

// zone is the zone a time override is read in: the override location's,
// else the real location's, else UTC.
func (s *Service) zone(override *location.Location) *time.Location {
	candidate := override
	if candidate == nil && s.locations != nil {
		if loc, ok := s.locations.Resolved(); ok {
			candidate = &loc
		}
	}
	if candidate == nil {
		return time.UTC
	}
	z, err := candidate.Zone()
	if err != nil {
		return time.UTC
	}
	return z
}

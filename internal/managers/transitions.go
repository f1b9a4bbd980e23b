package managers

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/engine"
	"github.com/chrissnell/waqt/pkg/sky"
)

// transitionState is what the logger compares between snapshots
type transitionState struct {
	cycle  sky.Cycle
	window string
	date   string
	stale  bool
	place  string
}

func stateOf(s engine.Snapshot) transitionState {
	ts := transitionState{
		cycle:  s.Cycle,
		window: s.PrayerWindow.Name,
		date:   s.Now.Format("2006-01-02"),
		stale:  s.Stale,
	}
	if s.Location != nil {
		ts.place = s.Location.City + "|" + s.Location.Timezone
	}
	if s.Prayer == nil {
		ts.window = ""
	}
	return ts
}

// StartTransitionLogger logs sky cycle, prayer window, day and location
// changes seen on snapshots from ch
func StartTransitionLogger(ctx context.Context, wg *sync.WaitGroup, ch <-chan engine.Snapshot, logger *zap.SugaredLogger) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		var prev *transitionState
		for {
			select {
			case snap, ok := <-ch:
				if !ok {
					return
				}
				cur := stateOf(snap)
				logTransitions(logger, prev, cur, snap)
				prev = &cur
			case <-ctx.Done():
				return
			}
		}
	}()
}

func logTransitions(logger *zap.SugaredLogger, prev *transitionState, cur transitionState, snap engine.Snapshot) {
	if prev == nil {
		logger.Infow("first snapshot", "cycle", cur.cycle, "prayer_window", cur.window, "has_location", snap.HasLocation)
		return
	}

	if prev.place != cur.place {
		logger.Infow("location changed", "from", prev.place, "to", cur.place)
	}
	if prev.date != cur.date {
		logger.Infow("new day", "date", cur.date, "season", snap.Season.CurrentSeason, "day_of_year", snap.Year.DayOfYear)
	}
	if prev.cycle != cur.cycle {
		logger.Infow("sky cycle changed", "from", prev.cycle, "to", cur.cycle)
	}
	if prev.window != cur.window && cur.window != "" {
		logger.Infow("prayer window changed", "from", prev.window, "to", cur.window, "next", snap.PrayerWindow.NextPrayerName)
	}
	if prev.stale != cur.stale {
		logger.Warnw("snapshot staleness changed", "stale", cur.stale)
	}
}

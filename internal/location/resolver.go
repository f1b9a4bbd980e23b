package location

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultIPTimeout     = time.Second
	DefaultDeviceTimeout = 3 * time.Second
)

// Resolver races a fast, coarse IP lookup against a slower, precise device
// lookup. The IP answer is reported as preliminary unless the device has
// already answered; the device answer is always final.
type Resolver struct {
	IP            Provider
	Device        Provider
	IPTimeout     time.Duration
	DeviceTimeout time.Duration
	Logger        *zap.SugaredLogger
}

// Outcome reports what each branch produced
type Outcome struct {
	RequestID string
	IP        *Location
	Device    *Location
}

// Resolve runs both branches and waits for them. Callbacks run one at a time
// and never after Resolve returns. If neither branch succeeds the error is
// ErrLocationUnavailable.
func (r *Resolver) Resolve(ctx context.Context, onPreliminary, onFinal func(Location)) (Outcome, error) {
	out := Outcome{RequestID: uuid.NewString()}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger = logger.With("request_id", out.RequestID)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	run := func(name string, p Provider, timeout time.Duration, handle func(Location)) {
		defer wg.Done()
		if p == nil {
			logger.Debugf("%s location provider not configured", name)
			return
		}

		bctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		loc, err := p.Resolve(bctx)
		if err != nil {
			logger.Warnw("location branch failed", "branch", name, "error", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		handle(loc)
	}

	ipTimeout, deviceTimeout := r.IPTimeout, r.DeviceTimeout
	if ipTimeout <= 0 {
		ipTimeout = DefaultIPTimeout
	}
	if deviceTimeout <= 0 {
		deviceTimeout = DefaultDeviceTimeout
	}

	wg.Add(2)
	go run("ip", r.IP, ipTimeout, func(loc Location) {
		out.IP = &loc
		if out.Device == nil && onPreliminary != nil {
			onPreliminary(loc)
		}
	})
	go run("device", r.Device, deviceTimeout, func(loc Location) {
		out.Device = &loc
		if onFinal != nil {
			onFinal(loc)
		}
	})
	wg.Wait()

	if out.IP == nil && out.Device == nil {
		return out, ErrLocationUnavailable
	}
	return out, nil
}

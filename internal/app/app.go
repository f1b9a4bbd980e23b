package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/clock"
	"github.com/chrissnell/waqt/internal/controllers/restserver"
	"github.com/chrissnell/waqt/internal/debugmode"
	"github.com/chrissnell/waqt/internal/engine"
	"github.com/chrissnell/waqt/internal/location"
	"github.com/chrissnell/waqt/internal/log"
	"github.com/chrissnell/waqt/internal/managers"
	"github.com/chrissnell/waqt/internal/store"
	"github.com/chrissnell/waqt/pkg/config"
	"github.com/chrissnell/waqt/pkg/prayer"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %v", err)
	}

	st, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("could not open store: %v", err)
	}
	defer st.Close()

	locations, err := a.newLocationManager(ctx, cfg, st)
	if err != nil {
		return err
	}
	defer locations.Close()
	locations.Start()

	debugClock := clock.NewDebug(clock.Wall{})
	debug := debugmode.New(st, debugClock, locations, log.Named("debug"))
	debug.Load()

	defaults := prayer.Settings{Method: cfg.Prayer.Method, Madhab: cfg.Prayer.Madhab}
	eng := engine.New(st, locations, defaults, log.Named("engine"))

	ticks := managers.NewTickManager(eng, debugClock, managers.DefaultTickInterval, log.Named("tick"))
	transitions, _ := ticks.Subscribe()
	managers.StartTransitionLogger(ctx, &wg, transitions, log.Named("sky"))
	ticks.Start(ctx, &wg)

	finder := &location.PresetFinder{}
	svc := restserver.Services{
		Engine:    eng,
		Locations: locations,
		Searcher:  location.NewSearcher(finder, location.DefaultDebounce),
		Debug:     debug,
		Clock:     debugClock,
		Feed:      ticks,
	}

	cm, err := managers.NewControllerManager(ctx, &wg, cfg, svc, a.logger)
	if err != nil {
		return err
	}
	err = cm.StartControllers()
	if err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// newLocationManager builds the resolver from configuration: the IP branch
// when a lookup URL is set and the device branch when a fixed location is
// configured.
func (a *App) newLocationManager(ctx context.Context, cfg *config.ConfigData, st store.Store) (*location.Manager, error) {
	lc := cfg.Location
	ipTimeout, deviceTimeout, ttl, err := lc.Timeouts()
	if err != nil {
		return nil, err
	}

	resolver := &location.Resolver{
		IPTimeout:     ipTimeout,
		DeviceTimeout: deviceTimeout,
		Logger:        log.Named("resolver"),
	}
	if lc.IPLookupURL != "" {
		resolver.IP = &location.IPProvider{
			URL:             lc.IPLookupURL,
			Client:          &http.Client{Timeout: ipTimeout},
			DefaultTimezone: lc.Timezone,
		}
	}
	if lc.HasFixedLocation() {
		resolver.Device = &location.StaticProvider{
			Lat:      lc.Latitude,
			Lon:      lc.Longitude,
			Timezone: lc.Timezone,
			City:     lc.City,
			Geocoder: &location.PresetFinder{},
		}
	}

	m := location.NewManager(ctx, st, resolver, ttl, log.Named("location"))
	if lc.Timezone != "" {
		m.DefaultTimezone = lc.Timezone
	}
	return m, nil
}

package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/clock"
	"github.com/chrissnell/waqt/internal/debugmode"
	"github.com/chrissnell/waqt/internal/engine"
	"github.com/chrissnell/waqt/internal/location"
	"github.com/chrissnell/waqt/internal/log"
	"github.com/chrissnell/waqt/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.ServerData
	Server     http.Server
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// Services are the components the handlers read and mutate
type Services struct {
	Engine    *engine.Engine
	Locations *location.Manager
	Searcher  *location.Searcher
	Debug     *debugmode.Service
	Clock     clock.Clock
	Feed      SnapshotFeed
}

// SnapshotFeed delivers a snapshot on every tick
type SnapshotFeed interface {
	Subscribe() (<-chan engine.Snapshot, func())
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.ServerData, svc Services, logger *zap.SugaredLogger) (*Controller, error) {
	if svc.Engine == nil {
		return nil, fmt.Errorf("REST server requires an engine")
	}
	if svc.Clock == nil {
		svc.Clock = clock.Wall{}
	}
	if logger == nil {
		logger = log.Named("restserver")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		logger:     logger,
	}

	// If a listen address was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("listen address not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = config.DefaultListenAddr
	}
	if rc.Port == 0 {
		logger.Infof("port not provided; defaulting to %d", config.DefaultPort)
		rc.Port = config.DefaultPort
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(svc, logger)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.Router()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Router configures the HTTP router with all endpoints
func (c *Controller) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	h := c.handlers

	api.HandleFunc("/snapshot", h.GetSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/snapshot/stream", h.StreamSnapshots).Methods(http.MethodGet)
	api.HandleFunc("/yearmap", h.GetYearMap).Methods(http.MethodGet)
	api.HandleFunc("/moon/shadow", h.GetMoonShadow).Methods(http.MethodGet)

	api.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.PutSettings).Methods(http.MethodPut)
	api.HandleFunc("/methods", h.GetMethods).Methods(http.MethodGet)

	api.HandleFunc("/location", h.GetLocation).Methods(http.MethodGet)
	api.HandleFunc("/location", h.PutLocation).Methods(http.MethodPut)
	api.HandleFunc("/location", h.DeleteLocation).Methods(http.MethodDelete)
	api.HandleFunc("/location/refresh", h.RefreshLocation).Methods(http.MethodPost)
	api.HandleFunc("/search", h.SearchCities).Methods(http.MethodGet)

	api.HandleFunc("/debug", h.GetDebug).Methods(http.MethodGet)
	api.HandleFunc("/debug", h.PutDebug).Methods(http.MethodPut)
	api.HandleFunc("/debug/presets", h.GetDebugPresets).Methods(http.MethodGet)
	api.HandleFunc("/debug/jump/{preset}", h.JumpDebugClock).Methods(http.MethodPost)

	api.HandleFunc("/logs", h.GetLogs).Methods(http.MethodGet)
	api.HandleFunc("/logs/http", h.GetHTTPLogs).Methods(http.MethodGet)

	return router
}

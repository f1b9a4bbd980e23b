package restserver

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/clock"
	"github.com/chrissnell/waqt/internal/location"
	"github.com/chrissnell/waqt/internal/log"
	"github.com/chrissnell/waqt/pkg/lunar"
	"github.com/chrissnell/waqt/pkg/prayer"
	"github.com/chrissnell/waqt/pkg/responseformat"
	"github.com/chrissnell/waqt/pkg/yearmap"
)

const defaultLogLimit = 100

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	svc       Services
	formatter *responseformat.Formatter
	logger    *zap.SugaredLogger
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc Services, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{
		svc:       svc,
		formatter: responseformat.NewFormatter(),
		logger:    logger,
	}
}

var noStore = map[string]string{"Cache-Control": "no-store"}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *Handlers) respond(w http.ResponseWriter, req *http.Request, status int, data any) {
	if err := h.formatter.WriteStatus(w, req, status, data, noStore); err != nil {
		h.logger.Errorf("error writing response for %s: %v", req.URL.Path, err)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, req *http.Request, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	h.respond(w, req, status, resp)
}

// GetSnapshot returns the full dashboard state for the current instant
func (h *Handlers) GetSnapshot(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, http.StatusOK, h.svc.Engine.Snapshot(h.svc.Clock.Now()))
}

// GetYearMap returns the year grid for the current local date
func (h *Handlers) GetYearMap(w http.ResponseWriter, req *http.Request) {
	snap := h.svc.Engine.Snapshot(h.svc.Clock.Now())
	h.respond(w, req, http.StatusOK, yearmap.Build(snap.Now))
}

type moonShadowResponse struct {
	Phase float64 `json:"phase"`
	Path  string  `json:"path"`
}

// GetMoonShadow renders the shadow path for ?phase=, or for the current moon
// when the parameter is absent.
func (h *Handlers) GetMoonShadow(w http.ResponseWriter, req *http.Request) {
	var phase float64

	if raw := req.URL.Query().Get("phase"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
			h.fail(w, req, http.StatusBadRequest, "phase must be a number between 0 and 1", err)
			return
		}
		phase = p
	} else {
		snap := h.svc.Engine.Snapshot(h.svc.Clock.Now())
		if snap.MoonPhase != nil {
			phase = snap.MoonPhase.Phase
		} else {
			phase = lunar.GeocentricPhase(snap.Now).Phase
		}
	}

	h.respond(w, req, http.StatusOK, moonShadowResponse{Phase: phase, Path: lunar.ShadowPath(phase)})
}

func (h *Handlers) GetSettings(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, http.StatusOK, h.svc.Engine.Settings())
}

// PutSettings merges the submitted fields into the active prayer settings
func (h *Handlers) PutSettings(w http.ResponseWriter, req *http.Request) {
	var patch prayer.Settings
	if err := h.formatter.DecodeBody(req, &patch); err != nil {
		h.fail(w, req, http.StatusBadRequest, "invalid settings", err)
		return
	}

	saved, err := h.svc.Engine.SetSettings(h.svc.Engine.Settings().Merge(patch))
	if err != nil {
		h.logger.Errorf("error saving settings: %v", err)
		h.fail(w, req, http.StatusInternalServerError, "could not save settings", err)
		return
	}
	h.respond(w, req, http.StatusOK, saved)
}

type methodsResponse struct {
	Methods []string `json:"methods"`
	Madhabs []string `json:"madhabs"`
}

func (h *Handlers) GetMethods(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, http.StatusOK, methodsResponse{
		Methods: prayer.Methods(),
		Madhabs: []string{prayer.Shafi.String(), prayer.Hanafi.String()},
	})
}

func (h *Handlers) GetLocation(w http.ResponseWriter, req *http.Request) {
	if h.svc.Locations == nil {
		h.respond(w, req, http.StatusOK, location.Report{Status: location.StatusIdle})
		return
	}
	h.respond(w, req, http.StatusOK, h.svc.Locations.Report())
}

type manualLocationRequest struct {
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	City     string   `json:"city"`
	Timezone string   `json:"timezone"`
}

// PutLocation sets a manual location
func (h *Handlers) PutLocation(w http.ResponseWriter, req *http.Request) {
	if h.svc.Locations == nil {
		h.fail(w, req, http.StatusServiceUnavailable, "location service not configured", nil)
		return
	}

	var body manualLocationRequest
	if err := h.formatter.DecodeBody(req, &body); err != nil {
		h.fail(w, req, http.StatusBadRequest, "invalid location", err)
		return
	}
	if body.Lat == nil || body.Lon == nil {
		h.fail(w, req, http.StatusBadRequest, "lat and lon are required", nil)
		return
	}

	if _, err := h.svc.Locations.SetManual(*body.Lat, *body.Lon, body.City, body.Timezone); err != nil {
		h.fail(w, req, http.StatusBadRequest, "invalid location", err)
		return
	}
	h.respond(w, req, http.StatusOK, h.svc.Locations.Report())
}

// DeleteLocation clears the cached location
func (h *Handlers) DeleteLocation(w http.ResponseWriter, req *http.Request) {
	if h.svc.Locations == nil {
		h.fail(w, req, http.StatusServiceUnavailable, "location service not configured", nil)
		return
	}
	h.svc.Locations.Clear()
	h.respond(w, req, http.StatusOK, h.svc.Locations.Report())
}

// RefreshLocation re-resolves the location and waits for the result
func (h *Handlers) RefreshLocation(w http.ResponseWriter, req *http.Request) {
	if h.svc.Locations == nil {
		h.fail(w, req, http.StatusServiceUnavailable, "location service not configured", nil)
		return
	}

	if err := h.svc.Locations.Refresh(req.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.Canceled) || req.Context().Err() != nil {
			status = http.StatusRequestTimeout
		}
		h.respond(w, req, status, h.svc.Locations.Report())
		return
	}
	h.respond(w, req, http.StatusOK, h.svc.Locations.Report())
}

// SearchCities runs a debounced city search for ?q=
func (h *Handlers) SearchCities(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query().Get("q")
	if h.svc.Searcher == nil {
		h.respond(w, req, http.StatusOK, location.SearchResult{Query: q, Suggestions: []location.CitySuggestion{}})
		return
	}
	h.respond(w, req, http.StatusOK, h.svc.Searcher.Search(req.Context(), q))
}

func (h *Handlers) GetDebug(w http.ResponseWriter, req *http.Request) {
	if h.svc.Debug == nil {
		h.fail(w, req, http.StatusNotFound, "debug mode not available", nil)
		return
	}
	h.respond(w, req, http.StatusOK, h.svc.Debug.State())
}

// PutDebug replaces the debug state
func (h *Handlers) PutDebug(w http.ResponseWriter, req *http.Request) {
	if h.svc.Debug == nil {
		h.fail(w, req, http.StatusNotFound, "debug mode not available", nil)
		return
	}

	var state clock.DebugState
	if err := h.formatter.DecodeBody(req, &state); err != nil {
		h.fail(w, req, http.StatusBadRequest, "invalid debug state", err)
		return
	}

	applied, err := h.svc.Debug.Apply(state)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, "could not apply debug state", err)
		return
	}
	h.respond(w, req, http.StatusOK, applied)
}

type debugPresetsResponse struct {
	Locations []location.Preset `json:"locations"`
	Times     []string          `json:"times"`
	Speeds    []int             `json:"speeds"`
}

func (h *Handlers) GetDebugPresets(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, http.StatusOK, debugPresetsResponse{
		Locations: location.Presets,
		Times:     clock.PresetKeys,
		Speeds:    clock.Speeds,
	})
}

// JumpDebugClock moves the debug clock to one of today's solar events
func (h *Handlers) JumpDebugClock(w http.ResponseWriter, req *http.Request) {
	if h.svc.Debug == nil {
		h.fail(w, req, http.StatusNotFound, "debug mode not available", nil)
		return
	}

	snap := h.svc.Engine.Snapshot(h.svc.Clock.Now())
	if snap.Solar == nil {
		h.fail(w, req, http.StatusConflict, "no solar data for the current location", nil)
		return
	}

	applied, err := h.svc.Debug.JumpTo(mux.Vars(req)["preset"], *snap.Solar)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, "could not jump to preset", err)
		return
	}
	h.respond(w, req, http.StatusOK, applied)
}

func logLimit(req *http.Request) int {
	limit := defaultLogLimit
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	return limit
}

// GetLogs returns the most recent application log entries
func (h *Handlers) GetLogs(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, http.StatusOK, log.GetLogBuffer().Recent(logLimit(req)))
}

// GetHTTPLogs returns the most recent request log entries
func (h *Handlers) GetHTTPLogs(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, http.StatusOK, log.GetHTTPLogBuffer().Recent(logLimit(req)))
}

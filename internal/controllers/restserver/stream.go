package restserver

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamSnapshots sends every tick's snapshot as a server-sent event until
// the client goes away
func (h *Handlers) StreamSnapshots(w http.ResponseWriter, req *http.Request) {
	if h.svc.Feed == nil {
		h.fail(w, req, http.StatusServiceUnavailable, "snapshot stream not available", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.fail(w, req, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	ch, unsubscribe := h.svc.Feed.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				h.logger.Errorf("error encoding snapshot: %v", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-req.Context().Done():
			return
		}
	}
}

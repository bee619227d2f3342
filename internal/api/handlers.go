package api

import (
	"encoding/json"
	"log"
	"net/http"

	"galaxy-forge/internal/galaxy"
)

// Handler methods for routerHandlers.
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	// Lock-free snapshot read; never blocks a build in progress
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetEntities(w http.ResponseWriter, r *http.Request) {
	snapshot := h.engine.GetSnapshot()
	writeJSON(w, map[string]interface{}{
		"entities": snapshot.Entities,
		"count":    len(snapshot.Entities),
		"buildNum": snapshot.BuildNum,
	})
}

func (h *routerHandlers) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"metrics":     h.engine.Metrics(),
		"entityCount": h.engine.EntityCount(),
		"eventLog":    h.engine.GetEventLogStats(),
	})
}

func (h *routerHandlers) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	advisor := h.engine.Advisor()
	writeJSON(w, map[string]interface{}{
		"strategies":  advisor.Summary(),
		"recommended": advisor.OptimalStrategy(h.engine.EntityCount()),
	})
}

func (h *routerHandlers) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Source string  `json:"source"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = GetClientIP(r)
	}

	// Malformed coordinates are dropped inside the engine, not surfaced
	// to the visitor
	h.engine.RecordInteraction(req.X, req.Y, req.Source)
	writeJSON(w, map[string]interface{}{"ok": true})
}

func (h *routerHandlers) handleAddEntity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Parent     string `json:"parent"`
		Title      string `json:"title"`
		URL        string `json:"url"`
		Importance string `json:"importance"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		writeError(w, "id is required", http.StatusBadRequest)
		return
	}

	err := h.engine.AddEntity(galaxy.Record{
		ID:         req.ID,
		Type:       req.Type,
		Parent:     req.Parent,
		Title:      req.Title,
		URL:        req.URL,
		Importance: req.Importance,
	})
	if err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, map[string]interface{}{
		"ok":          true,
		"entityCount": h.engine.EntityCount(),
	})
}

func (h *routerHandlers) handleRebuild(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.engine.BuildLayout()
	if err != nil {
		log.Printf("⚠️ Rebuild failed: %v", err)
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, metrics)
}

// writeJSON writes a JSON response with the proper content type.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

//go:build unix
// +build unix

package daemon

import (
	"encoding/json"
	"net/http"
	"time"
)

func (d *Daemon) setupRoutes(mux *http.ServeMux) {
	// Health endpoint
	mux.HandleFunc("/health", d.handleHealth)

	// Avatar endpoints
	mux.HandleFunc("/api/avatars/list", d.handleListAvatars)
	mux.HandleFunc("/api/avatars/upload", d.handleUploadAvatar)
	mux.HandleFunc("/api/avatars/crop", d.handleCropAvatar)
	mux.HandleFunc("/api/avatars/pending", d.handlePendingUploads)
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(d.startTime).Seconds(),
	}); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

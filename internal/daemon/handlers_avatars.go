//go:build unix

package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jirav/jirav/internal/bridge/jira"
	"github.com/jirav/jirav/internal/limits"
	"github.com/jirav/jirav/internal/registry"
)

// Request/Response types

type listAvatarsRequest struct {
	Config     jira.JiraConfig `json:"config"`
	AvatarType string          `json:"avatar_type"`
}

type ListAvatarsResponse struct {
	Avatars []jira.Avatar `json:"avatars"`
}

type uploadAvatarRequest struct {
	Config     jira.JiraConfig `json:"config"`
	AvatarType string          `json:"avatar_type"`
	FilePath   string          `json:"file_path"`
}

type UploadAvatarResponse struct {
	Upload *registry.Upload `json:"upload"`
}

type cropAvatarRequest struct {
	Config     jira.JiraConfig        `json:"config"`
	AvatarType string                 `json:"avatar_type"`
	UploadID   string                 `json:"upload_id,omitempty"`
	Crop       *jira.CropInstructions `json:"crop,omitempty"`
}

type CropAvatarResponse struct {
	Avatar  *jira.Avatar `json:"avatar"`
	Message string       `json:"message"`
}

type PendingUploadsResponse struct {
	Uploads []*registry.Upload `json:"uploads"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// decodeRequest decodes a size-capped JSON body into v
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.JSON))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// handleListAvatars handles POST /api/avatars/list
func (d *Daemon) handleListAvatars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req listAvatarsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Config.BaseURL == "" {
		writeError(w, "missing required fields", http.StatusBadRequest)
		return
	}

	client := jira.NewClient(req.Config.BaseURL, req.Config.Email, req.Config.APIToken)

	avatars, err := client.GetSystemAvatars(r.Context(), req.AvatarType)
	if err != nil {
		if errors.Is(err, jira.ErrNoAvatarType) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, "list failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, ListAvatarsResponse{Avatars: avatars})
}

// handleUploadAvatar handles POST /api/avatars/upload
// The uploaded image is recorded in the pending-upload registry together
// with the crop window Jira suggested for it.
func (d *Daemon) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req uploadAvatarRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Config.BaseURL == "" || req.FilePath == "" {
		writeError(w, "missing required fields", http.StatusBadRequest)
		return
	}

	client := jira.NewClient(req.Config.BaseURL, req.Config.Email, req.Config.APIToken)

	crop, err := client.CreateTemporaryAvatar(r.Context(), req.AvatarType, req.FilePath)
	if err != nil {
		switch {
		case errors.Is(err, jira.ErrNoAvatarType),
			errors.Is(err, jira.ErrEmptyFile),
			errors.Is(err, jira.ErrFileTooLarge):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			writeError(w, "upload failed: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	upload, err := recordUpload(d.uploads, req.AvatarType, req.FilePath, crop)
	if err != nil {
		log.Printf("[WARN] handleUploadAvatar: Failed to record pending upload: %v", err)
		// Jira accepted the upload; report it even if local bookkeeping failed
	}

	writeJSON(w, UploadAvatarResponse{Upload: upload})
}

// recordUpload adds a pending-upload record for a completed temporary
// avatar upload
func recordUpload(uploads *registry.Registry, avatarType, filePath string, crop *jira.CropInstructions) (*registry.Upload, error) {
	var size int64
	if fi, err := os.Stat(filePath); err == nil {
		size = fi.Size()
	}

	upload := &registry.Upload{
		AvatarType: avatarType,
		Filename:   filepath.Base(filePath),
		Size:       size,
		Crop:       crop,
	}

	if err := uploads.RecordAndSave(upload); err != nil {
		return nil, err
	}
	return upload, nil
}

// handleCropAvatar handles POST /api/avatars/crop
// If no explicit crop window is supplied, the one recorded at upload time is
// used (selected by upload_id, or the latest pending upload for the type).
func (d *Daemon) handleCropAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req cropAvatarRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Config.BaseURL == "" {
		writeError(w, "missing required fields", http.StatusBadRequest)
		return
	}

	// Resolve the pending upload this crop confirms, if any. An explicit
	// crop window still spends the latest pending record for the type; it
	// just doesn't require one to exist.
	var pending *registry.Upload
	var err error
	if req.UploadID != "" {
		pending, err = d.uploads.Get(req.UploadID)
		if err != nil {
			writeError(w, fmt.Sprintf("upload %s not found", req.UploadID), http.StatusNotFound)
			return
		}
	} else if req.Crop == nil {
		pending, err = d.uploads.Latest(req.AvatarType)
		if err != nil {
			writeError(w, "no pending upload to crop; upload an avatar first or pass an explicit crop window", http.StatusNotFound)
			return
		}
	} else {
		pending, _ = d.uploads.Latest(req.AvatarType)
	}

	crop := req.Crop
	if crop == nil && pending != nil {
		crop = pending.Crop
	}

	client := jira.NewClient(req.Config.BaseURL, req.Config.Email, req.Config.APIToken)

	avatar, err := client.CropTemporaryAvatar(r.Context(), req.AvatarType, crop)
	if err != nil {
		switch {
		case errors.Is(err, jira.ErrNoAvatarType), errors.Is(err, jira.ErrNoCropInstructions):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			writeError(w, "crop failed: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	// The pending record is spent once the crop is confirmed
	if pending != nil {
		if _, err := d.uploads.RemoveAndSave(pending.ID); err != nil {
			log.Printf("[WARN] handleCropAvatar: Failed to remove pending upload %s: %v", pending.ID, err)
		}
	}

	writeJSON(w, CropAvatarResponse{Avatar: avatar, Message: "avatar cropped"})
}

// handlePendingUploads handles GET /api/avatars/pending
func (d *Daemon) handlePendingUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, PendingUploadsResponse{Uploads: d.uploads.List()})
}

package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUploadNotFound indicates the upload ID doesn't exist
	ErrUploadNotFound = errors.New("upload not found")
	// ErrUploadAlreadyExists indicates the upload ID is already recorded
	ErrUploadAlreadyExists = errors.New("upload already exists")
	// ErrInvalidUpload indicates a record missing required fields
	ErrInvalidUpload = errors.New("invalid upload record")
)

// Registry manages the collection of pending avatar uploads
type Registry struct {
	filePath string
	data     *RegistryData
	mu       sync.RWMutex
}

// New creates a new Registry instance
func New(filePath string) (*Registry, error) {
	r := &Registry{
		filePath: filePath,
		data: &RegistryData{
			Uploads: make(map[string]*Upload),
		},
	}

	// Try to load existing registry
	if err := r.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return r, nil
}

// Load reads the registry from disk
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			r.data = &RegistryData{Uploads: make(map[string]*Upload)}
			return nil
		}
		return err
	}

	var registryData RegistryData
	if err := yaml.Unmarshal(data, &registryData); err != nil {
		return fmt.Errorf("failed to unmarshal registry: %w", err)
	}

	// Initialize map if nil
	if registryData.Uploads == nil {
		registryData.Uploads = make(map[string]*Upload)
	}

	r.data = &registryData
	return nil
}

// saveNoLock persists registry without locking (caller must hold lock)
func (r *Registry) saveNoLock() error {
	// Ensure parent directory exists
	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(r.data)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Write to temp file for atomic replacement
	f, err := os.CreateTemp(dir, ".uploads-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	// Best-effort cleanup if we fail
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to fsync registry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close registry file: %w", err)
	}

	// Atomic replace
	if err := os.Rename(tmp, r.filePath); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}

	return nil
}

// RecordAndSave atomically records a pending upload and persists.
// On save failure, the in-memory change is rolled back.
func (r *Registry) RecordAndSave(upload *Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if upload.AvatarType == "" || upload.Filename == "" {
		return fmt.Errorf("%w: avatar_type and filename are required", ErrInvalidUpload)
	}

	// Set timestamp if not already set
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}

	// Generate ID if not set
	if upload.ID == "" {
		upload.ID = GenerateUploadID()
	}

	if _, exists := r.data.Uploads[upload.ID]; exists {
		return ErrUploadAlreadyExists
	}

	// Apply in-memory
	r.data.Uploads[upload.ID] = upload

	// Persist
	if err := r.saveNoLock(); err != nil {
		// Rollback in-memory change
		delete(r.data.Uploads, upload.ID)
		return fmt.Errorf("persist failed: %w", err)
	}
	return nil
}

// RemoveAndSave atomically removes a pending upload and persists.
// On save failure, the removal is rolled back.
func (r *Registry) RemoveAndSave(uploadID string) (*Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	upload, ok := r.data.Uploads[uploadID]
	if !ok {
		return nil, ErrUploadNotFound
	}

	// Apply in-memory
	delete(r.data.Uploads, uploadID)

	// Persist
	if err := r.saveNoLock(); err != nil {
		// Rollback removal
		r.data.Uploads[uploadID] = upload
		return nil, fmt.Errorf("persist failed: %w", err)
	}
	return upload, nil
}

// Get returns a pending upload by ID
func (r *Registry) Get(uploadID string) (*Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	upload, ok := r.data.Uploads[uploadID]
	if !ok {
		return nil, ErrUploadNotFound
	}
	return upload, nil
}

// List returns all pending uploads sorted newest first, then by ID
func (r *Registry) List() []*Upload {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uploads := make([]*Upload, 0, len(r.data.Uploads))
	for _, u := range r.data.Uploads {
		uploads = append(uploads, u)
	}

	sort.Slice(uploads, func(i, j int) bool {
		if uploads[i].UploadedAt.Equal(uploads[j].UploadedAt) {
			return uploads[i].ID < uploads[j].ID
		}
		return uploads[i].UploadedAt.After(uploads[j].UploadedAt)
	})

	return uploads
}

// Latest returns the most recent pending upload for the given avatar type
func (r *Registry) Latest(avatarType string) (*Upload, error) {
	for _, u := range r.List() {
		if u.AvatarType == avatarType {
			return u, nil
		}
	}
	return nil, ErrUploadNotFound
}

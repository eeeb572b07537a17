package registry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jirav/jirav/internal/bridge/jira"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uploads.yaml")
	r, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	return r, path
}

func TestRecordAndSave_RoundTrip(t *testing.T) {
	r, path := newTestRegistry(t)

	upload := &Upload{
		AvatarType: "project",
		Filename:   "logo.png",
		Size:       1024,
		Crop:       &jira.CropInstructions{CropperWidth: 120, NeedsCropping: true},
	}

	if err := r.RecordAndSave(upload); err != nil {
		t.Fatalf("RecordAndSave failed: %v", err)
	}

	if upload.ID == "" {
		t.Error("Expected an ID to be generated")
	}
	if upload.UploadedAt.IsZero() {
		t.Error("Expected UploadedAt to be set")
	}

	// A fresh registry reading the same file sees the record
	r2, err := New(path)
	if err != nil {
		t.Fatalf("Failed to reopen registry: %v", err)
	}

	got, err := r2.Get(upload.ID)
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}
	if got.Filename != "logo.png" || got.Size != 1024 {
		t.Errorf("Unexpected record after reload: %+v", got)
	}
	if got.Crop == nil || got.Crop.CropperWidth != 120 {
		t.Errorf("Crop instructions lost on reload: %+v", got.Crop)
	}
}

func TestRecordAndSave_MissingFields(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.RecordAndSave(&Upload{Filename: "logo.png"})
	if !errors.Is(err, ErrInvalidUpload) {
		t.Fatalf("Expected ErrInvalidUpload for missing avatar type, got %v", err)
	}

	err = r.RecordAndSave(&Upload{AvatarType: "project"})
	if !errors.Is(err, ErrInvalidUpload) {
		t.Fatalf("Expected ErrInvalidUpload for missing filename, got %v", err)
	}
}

func TestRecordAndSave_DuplicateID(t *testing.T) {
	r, _ := newTestRegistry(t)

	upload := &Upload{ID: "fixed-id", AvatarType: "project", Filename: "a.png"}
	if err := r.RecordAndSave(upload); err != nil {
		t.Fatalf("RecordAndSave failed: %v", err)
	}

	dup := &Upload{ID: "fixed-id", AvatarType: "user", Filename: "b.png"}
	if err := r.RecordAndSave(dup); !errors.Is(err, ErrUploadAlreadyExists) {
		t.Fatalf("Expected ErrUploadAlreadyExists, got %v", err)
	}
}

func TestRemoveAndSave(t *testing.T) {
	r, path := newTestRegistry(t)

	upload := &Upload{AvatarType: "project", Filename: "a.png"}
	if err := r.RecordAndSave(upload); err != nil {
		t.Fatalf("RecordAndSave failed: %v", err)
	}

	removed, err := r.RemoveAndSave(upload.ID)
	if err != nil {
		t.Fatalf("RemoveAndSave failed: %v", err)
	}
	if removed.Filename != "a.png" {
		t.Errorf("Unexpected removed record: %+v", removed)
	}

	if _, err := r.Get(upload.ID); !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("Expected ErrUploadNotFound after removal, got %v", err)
	}

	// Removal persists across reload
	r2, err := New(path)
	if err != nil {
		t.Fatalf("Failed to reopen registry: %v", err)
	}
	if _, err := r2.Get(upload.ID); !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("Expected removal to persist, got %v", err)
	}
}

func TestRemoveAndSave_NotFound(t *testing.T) {
	r, _ := newTestRegistry(t)

	if _, err := r.RemoveAndSave("missing"); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("Expected ErrUploadNotFound, got %v", err)
	}
}

func TestList_SortedNewestFirst(t *testing.T) {
	r, _ := newTestRegistry(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uploads := []*Upload{
		{ID: "a", AvatarType: "project", Filename: "a.png", UploadedAt: base},
		{ID: "b", AvatarType: "user", Filename: "b.png", UploadedAt: base.Add(2 * time.Hour)},
		{ID: "c", AvatarType: "project", Filename: "c.png", UploadedAt: base.Add(1 * time.Hour)},
	}
	for _, u := range uploads {
		if err := r.RecordAndSave(u); err != nil {
			t.Fatalf("RecordAndSave failed: %v", err)
		}
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 uploads, got %d", len(list))
	}

	wantOrder := []string{"b", "c", "a"}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, list[i].ID)
		}
	}
}

func TestLatest_ByType(t *testing.T) {
	r, _ := newTestRegistry(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uploads := []*Upload{
		{ID: "p1", AvatarType: "project", Filename: "p1.png", UploadedAt: base},
		{ID: "u1", AvatarType: "user", Filename: "u1.png", UploadedAt: base.Add(3 * time.Hour)},
		{ID: "p2", AvatarType: "project", Filename: "p2.png", UploadedAt: base.Add(1 * time.Hour)},
	}
	for _, u := range uploads {
		if err := r.RecordAndSave(u); err != nil {
			t.Fatalf("RecordAndSave failed: %v", err)
		}
	}

	latest, err := r.Latest("project")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != "p2" {
		t.Errorf("Expected latest project upload p2, got %s", latest.ID)
	}

	if _, err := r.Latest("nonexistent"); !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("Expected ErrUploadNotFound for unknown type, got %v", err)
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	r, _ := newTestRegistry(t)

	if got := len(r.List()); got != 0 {
		t.Errorf("Expected empty registry, got %d records", got)
	}
}

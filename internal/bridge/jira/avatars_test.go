package jira

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// newTestClient returns a client pointed at a httptest server and a counter
// of requests the server actually received
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int64, *httptest.Server) {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "user@example.com", "token123"), &hits, srv
}

// writeTempImage creates a small fake image file and returns its path
func writeTempImage(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write temp image: %v", err)
	}
	return path
}

func TestGetSystemAvatars_MissingType(t *testing.T) {
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.GetSystemAvatars(context.Background(), "")
	if !errors.Is(err, ErrNoAvatarType) {
		t.Fatalf("Expected ErrNoAvatarType, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request to be issued, server saw %d", hits.Load())
	}
}

func TestGetSystemAvatars_Success(t *testing.T) {
	var gotPath, gotAuth string
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"system":[{"id":"1000","isSystemAvatar":true,"urls":{"48x48":"https://example.com/a.png"}},{"id":"1001","isSystemAvatar":true}]}`))
	})

	avatars, err := client.GetSystemAvatars(context.Background(), AvatarTypeProject)
	if err != nil {
		t.Fatalf("GetSystemAvatars failed: %v", err)
	}

	if gotPath != "/rest/api/2/avatar/project/system" {
		t.Errorf("Expected path /rest/api/2/avatar/project/system, got %s", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Errorf("Expected basic auth header, got %q", gotAuth)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected exactly 1 request, got %d", hits.Load())
	}

	if len(avatars) != 2 {
		t.Fatalf("Expected 2 avatars, got %d", len(avatars))
	}
	if avatars[0].ID != "1000" {
		t.Errorf("Expected avatar ID 1000, got %q", avatars[0].ID)
	}
	if !avatars[0].IsSystemAvatar {
		t.Errorf("Expected first avatar to be a system avatar")
	}
	if avatars[0].URLs["48x48"] != "https://example.com/a.png" {
		t.Errorf("Unexpected avatar URL map: %v", avatars[0].URLs)
	}
}

func TestGetSystemAvatars_UserType(t *testing.T) {
	var gotPath string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"system":[]}`))
	})

	if _, err := client.GetSystemAvatars(context.Background(), AvatarTypeUser); err != nil {
		t.Fatalf("GetSystemAvatars failed: %v", err)
	}
	if gotPath != "/rest/api/2/avatar/user/system" {
		t.Errorf("Expected user namespace path, got %s", gotPath)
	}
}

func TestGetSystemAvatars_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"errorMessages":["no such avatar type"]}`},
		{"unauthorized", http.StatusUnauthorized, `{"errorMessages":["auth required"]}`},
		{"server error", http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetSystemAvatars(context.Background(), AvatarTypeProject)
			if err == nil {
				t.Fatalf("Expected error for status %d", tt.status)
			}
			// All non-2xx responses surface the body uniformly
			if !strings.Contains(err.Error(), tt.body) {
				t.Errorf("Expected error to contain response body %q, got %q", tt.body, err.Error())
			}
		})
	}
}

func TestGetSystemAvatars_TransportError(t *testing.T) {
	client, _, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.GetSystemAvatars(context.Background(), AvatarTypeProject)
	if err == nil {
		t.Fatal("Expected transport error after server close")
	}
	if !strings.Contains(err.Error(), "failed to execute request") {
		t.Errorf("Expected wrapped transport error, got %q", err.Error())
	}
}

func TestCreateTemporaryAvatar_MissingType(t *testing.T) {
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	path := writeTempImage(t, "avatar.png", []byte("png-bytes"))

	_, err := client.CreateTemporaryAvatar(context.Background(), "", path)
	if !errors.Is(err, ErrNoAvatarType) {
		t.Fatalf("Expected ErrNoAvatarType, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request to be issued, server saw %d", hits.Load())
	}
}

func TestCreateTemporaryAvatar_MissingFile(t *testing.T) {
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.CreateTemporaryAvatar(context.Background(), AvatarTypeProject,
		filepath.Join(t.TempDir(), "does-not-exist.png"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request to be issued, server saw %d", hits.Load())
	}
}

func TestCreateTemporaryAvatar_EmptyFile(t *testing.T) {
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	path := writeTempImage(t, "empty.png", nil)

	_, err := client.CreateTemporaryAvatar(context.Background(), AvatarTypeProject, path)
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("Expected ErrEmptyFile, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request to be issued, server saw %d", hits.Load())
	}
}

func TestCreateTemporaryAvatar_Success(t *testing.T) {
	content := []byte("fake-png-content")

	var gotPath, gotCSRF, gotFilename, gotSize string
	var gotFormFile []byte
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCSRF = r.Header.Get("X-Atlassian-Token")
		gotFilename = r.URL.Query().Get("filename")
		gotSize = r.URL.Query().Get("size")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			t.Errorf("Failed to read file part: %v", err)
		}
		gotFormFile = data

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cropperWidth":120,"cropperOffsetX":10,"cropperOffsetY":20,"needsCropping":true}`))
	})

	path := writeTempImage(t, "logo.png", content)

	crop, err := client.CreateTemporaryAvatar(context.Background(), AvatarTypeUser, path)
	if err != nil {
		t.Fatalf("CreateTemporaryAvatar failed: %v", err)
	}

	if gotPath != "/rest/api/2/avatar/user/temporary" {
		t.Errorf("Expected temporary avatar path, got %s", gotPath)
	}
	if gotCSRF != "no-check" {
		t.Errorf("Expected X-Atlassian-Token: no-check, got %q", gotCSRF)
	}
	if gotFilename != "logo.png" {
		t.Errorf("Expected filename query param logo.png, got %q", gotFilename)
	}
	if gotSize != "16" {
		t.Errorf("Expected size query param 16, got %q", gotSize)
	}
	if string(gotFormFile) != string(content) {
		t.Errorf("Uploaded content mismatch: got %q", gotFormFile)
	}

	if !crop.NeedsCropping {
		t.Errorf("Expected needsCropping to be true")
	}
	if crop.CropperWidth != 120 || crop.CropperOffsetX != 10 || crop.CropperOffsetY != 20 {
		t.Errorf("Unexpected crop instructions: %+v", crop)
	}
}

func TestCropTemporaryAvatar_MissingType(t *testing.T) {
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.CropTemporaryAvatar(context.Background(), "", &CropInstructions{CropperWidth: 48})
	if !errors.Is(err, ErrNoAvatarType) {
		t.Fatalf("Expected ErrNoAvatarType, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request to be issued, server saw %d", hits.Load())
	}
}

func TestCropTemporaryAvatar_MissingCrop(t *testing.T) {
	client, hits, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.CropTemporaryAvatar(context.Background(), AvatarTypeProject, nil)
	if !errors.Is(err, ErrNoCropInstructions) {
		t.Fatalf("Expected ErrNoCropInstructions, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("Expected no request to be issued, server saw %d", hits.Load())
	}
}

func TestCropTemporaryAvatar_Success(t *testing.T) {
	var gotPath, gotCSRF, gotContentType string
	var gotBody CropInstructions
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCSRF = r.Header.Get("X-Atlassian-Token")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode crop body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"10023","isSystemAvatar":false,"isSelected":false,"isDeletable":true}`))
	})

	crop := &CropInstructions{CropperWidth: 120, CropperOffsetX: 10, CropperOffsetY: 20}
	avatar, err := client.CropTemporaryAvatar(context.Background(), AvatarTypeProject, crop)
	if err != nil {
		t.Fatalf("CropTemporaryAvatar failed: %v", err)
	}

	if gotPath != "/rest/api/2/avatar/project/temporaryCrop" {
		t.Errorf("Expected temporaryCrop path, got %s", gotPath)
	}
	if gotCSRF != "no-check" {
		t.Errorf("Expected X-Atlassian-Token: no-check, got %q", gotCSRF)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected application/json content type, got %q", gotContentType)
	}
	if gotBody.CropperWidth != 120 || gotBody.CropperOffsetX != 10 || gotBody.CropperOffsetY != 20 {
		t.Errorf("Unexpected crop body: %+v", gotBody)
	}

	if avatar.ID != "10023" {
		t.Errorf("Expected avatar ID 10023, got %q", avatar.ID)
	}
	if !avatar.IsDeletable {
		t.Errorf("Expected cropped avatar to be deletable")
	}
}

func TestCropTemporaryAvatar_ErrorStatus(t *testing.T) {
	body := `{"errorMessages":["no temporary avatar"]}`
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(body))
	})

	_, err := client.CropTemporaryAvatar(context.Background(), AvatarTypeProject, &CropInstructions{CropperWidth: 48})
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
	if !strings.Contains(err.Error(), body) {
		t.Errorf("Expected error to contain response body, got %q", err.Error())
	}
}

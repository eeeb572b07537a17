package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrNoAvatarType indicates the required avatar type option is missing
	ErrNoAvatarType = errors.New("avatarType must be provided (project or user)")
	// ErrNoCropInstructions indicates the required crop descriptor is missing
	ErrNoCropInstructions = errors.New("crop instructions must be provided")
	// ErrEmptyFile indicates the avatar image file has no content
	ErrEmptyFile = errors.New("avatar image file is empty")
	// ErrFileTooLarge indicates the avatar image exceeds MaxUploadSize
	ErrFileTooLarge = errors.New("avatar image file exceeds size limit")
)

// csrfBypassHeaders instructs Jira to skip its anti-forgery token check.
// Required for the temporary avatar endpoints, which reject form submissions
// without it.
var csrfBypassHeaders = map[string]string{"X-Atlassian-Token": "no-check"}

// GetSystemAvatars fetches the built-in avatars for the given namespace
// (AvatarTypeProject or AvatarTypeUser)
func (c *Client) GetSystemAvatars(ctx context.Context, avatarType string) ([]Avatar, error) {
	if avatarType == "" {
		return nil, ErrNoAvatarType
	}

	body, err := c.doRequest(ctx, "GET", "/avatar/"+avatarType+"/system", nil, nil)
	if err != nil {
		return nil, err
	}

	var list systemAvatarList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode avatar list: %w", err)
	}

	log.Printf("[DEBUG] GetSystemAvatars: Fetched %d %s avatars", len(list.System), avatarType)
	return list.System, nil
}

// CreateTemporaryAvatar uploads an image file as a temporary avatar and
// returns the crop window Jira suggests for it. The file is sized and named
// before the request is issued; the upload sends filename and size as query
// parameters alongside the multipart file body.
//
// Jira's temporary avatar endpoints do not reliably behave as their API
// documentation describes; callers should treat the result as best-effort.
func (c *Client) CreateTemporaryAvatar(ctx context.Context, avatarType, filePath string) (*CropInstructions, error) {
	if avatarType == "" {
		return nil, ErrNoAvatarType
	}

	fi, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat avatar image: %w", err)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, filePath)
	}
	if fi.Size() > MaxUploadSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, filePath, fi.Size())
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open avatar image: %w", err)
	}
	defer f.Close()

	filename := filepath.Base(filePath)
	query := url.Values{}
	query.Set("filename", filename)
	query.Set("size", strconv.FormatInt(fi.Size(), 10))

	log.Printf("[DEBUG] CreateTemporaryAvatar: Uploading %s (%d bytes) as %s avatar",
		filename, fi.Size(), avatarType)

	body, err := c.doUpload(ctx, "/avatar/"+avatarType+"/temporary", query,
		"file", filename, f, csrfBypassHeaders)
	if err != nil {
		return nil, err
	}

	var crop CropInstructions
	if err := json.Unmarshal(body, &crop); err != nil {
		return nil, fmt.Errorf("failed to decode crop instructions: %w", err)
	}

	return &crop, nil
}

// CropTemporaryAvatar confirms the crop window for a previously uploaded
// temporary avatar and returns the resulting avatar descriptor.
//
// Subject to the same reliability caveat as CreateTemporaryAvatar.
func (c *Client) CropTemporaryAvatar(ctx context.Context, avatarType string, crop *CropInstructions) (*Avatar, error) {
	if avatarType == "" {
		return nil, ErrNoAvatarType
	}
	if crop == nil {
		return nil, ErrNoCropInstructions
	}

	log.Printf("[DEBUG] CropTemporaryAvatar: Cropping %s avatar (width=%d, x=%d, y=%d)",
		avatarType, crop.CropperWidth, crop.CropperOffsetX, crop.CropperOffsetY)

	body, err := c.doRequest(ctx, "POST", "/avatar/"+avatarType+"/temporaryCrop",
		crop, csrfBypassHeaders)
	if err != nil {
		return nil, err
	}

	var avatar Avatar
	if err := json.Unmarshal(body, &avatar); err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}

	return &avatar, nil
}

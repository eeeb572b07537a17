package registry

import (
	"time"

	"github.com/jirav/jirav/internal/bridge/jira"
)

// Upload represents a temporary avatar upload awaiting a crop confirmation
type Upload struct {
	ID         string                 `yaml:"id" json:"id"`                   // UUID v4
	AvatarType string                 `yaml:"avatar_type" json:"avatar_type"` // project or user
	Filename   string                 `yaml:"filename" json:"filename"`      // Base name of the uploaded file
	Size       int64                  `yaml:"size" json:"size"`              // File size in bytes
	UploadedAt time.Time              `yaml:"uploaded_at" json:"uploaded_at"`
	Crop       *jira.CropInstructions `yaml:"crop,omitempty" json:"crop,omitempty"` // Crop window suggested by Jira
}

// RegistryData holds all pending uploads
type RegistryData struct {
	Uploads map[string]*Upload `yaml:"uploads" json:"uploads"` // Map of upload ID to Upload
}

package jira

import "fmt"

// Avatar represents a single avatar descriptor as returned by Jira
type Avatar struct {
	ID             string            `yaml:"id" json:"id"`
	IsSystemAvatar bool              `yaml:"is_system_avatar" json:"isSystemAvatar"`
	IsSelected     bool              `yaml:"is_selected" json:"isSelected"`
	IsDeletable    bool              `yaml:"is_deletable" json:"isDeletable"`
	URLs           map[string]string `yaml:"urls,omitempty" json:"urls,omitempty"`
}

// systemAvatarList is the wrapper object Jira returns from the system avatar endpoint
type systemAvatarList struct {
	System []Avatar `json:"system"`
}

// CropInstructions describes the crop window for a temporary avatar.
// Jira returns suggested values after an upload; the caller may adjust
// them before confirming the crop.
type CropInstructions struct {
	CropperWidth   int    `yaml:"cropper_width" json:"cropperWidth"`
	CropperOffsetX int    `yaml:"cropper_offset_x" json:"cropperOffsetX"`
	CropperOffsetY int    `yaml:"cropper_offset_y" json:"cropperOffsetY"`
	URL            string `yaml:"url,omitempty" json:"url,omitempty"`
	NeedsCropping  bool   `yaml:"needs_cropping" json:"needsCropping"`
}

// JiraConfig holds Jira connection configuration
type JiraConfig struct {
	BaseURL  string `yaml:"base_url" json:"base_url"`
	Email    string `yaml:"email" json:"email"`
	APIToken string `yaml:"api_token" json:"api_token"`
}

// String returns a sanitized string representation (hides API token)
func (c JiraConfig) String() string {
	token := "***REDACTED***"
	if len(c.APIToken) > 4 {
		token = c.APIToken[:4] + "***"
	}
	return fmt.Sprintf("JiraConfig{BaseURL: %s, Email: %s, Token: %s}",
		c.BaseURL, c.Email, token)
}

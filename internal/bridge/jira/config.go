package jira

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// LoadConfig loads and validates Jira configuration from .jirav/jira.json
// in the specified project directory. If no config file exists, connection
// settings are read from the environment (JIRAV_BASE_URL, JIRAV_EMAIL,
// JIRAV_API_TOKEN) instead.
func LoadConfig(projectPath string) (*JiraConfig, error) {
	configPath := filepath.Join(projectPath, ".jirav", "jira.json")

	// Check file permissions (should be 0600 to protect API token)
	fi, statErr := os.Stat(configPath)
	if statErr != nil && os.IsNotExist(statErr) {
		return loadConfigFromEnv(configPath)
	}
	if statErr == nil && (fi.Mode().Perm()&0o077) != 0 {
		return nil, fmt.Errorf("insecure permissions on %s; please run: chmod 600 %s", configPath, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read jira config at %s: %w", configPath, err)
	}

	var config JiraConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse jira config: %w", err)
	}

	// Validate required fields
	if config.BaseURL == "" || config.Email == "" || config.APIToken == "" {
		return nil, fmt.Errorf("jira config is incomplete: base_url, email and api_token are required")
	}

	return &config, nil
}

// loadConfigFromEnv builds the connection config from JIRAV_* environment
// variables. configPath is only used for the error message.
func loadConfigFromEnv(configPath string) (*JiraConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("JIRAV")
	v.AutomaticEnv()

	config := &JiraConfig{
		BaseURL:  v.GetString("BASE_URL"),
		Email:    v.GetString("EMAIL"),
		APIToken: v.GetString("API_TOKEN"),
	}

	if config.BaseURL == "" || config.Email == "" || config.APIToken == "" {
		return nil, fmt.Errorf("no jira config found: create %s with your Jira credentials "+
			"or set JIRAV_BASE_URL, JIRAV_EMAIL and JIRAV_API_TOKEN", configPath)
	}

	return config, nil
}

// LoadConfigFromCwd loads Jira configuration from the current working directory.
// Returns the config and the current working directory path.
func LoadConfigFromCwd() (*JiraConfig, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	config, err := LoadConfig(cwd)
	if err != nil {
		return nil, "", err
	}

	return config, cwd, nil
}

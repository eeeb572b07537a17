package jira

import "github.com/jirav/jirav/internal/limits"

const (
	// MaxAvatarResponseSize is the maximum size for Jira avatar API responses (1MB)
	MaxAvatarResponseSize = limits.JSON

	// MaxErrorBodySize is the maximum bytes to read from error response bodies
	MaxErrorBodySize = limits.ErrorBody

	// MaxUploadSize is the maximum accepted avatar image size
	MaxUploadSize = limits.AvatarImage

	// APIBasePath is the REST API prefix prepended to every endpoint path
	APIBasePath = "/rest/api/2"
)

// Avatar type namespaces understood by Jira
const (
	AvatarTypeProject = "project"
	AvatarTypeUser    = "user"
)

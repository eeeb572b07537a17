package registry

import "github.com/google/uuid"

// GenerateUploadID generates a new unique upload ID using UUID v4
func GenerateUploadID() string {
	return uuid.New().String()
}

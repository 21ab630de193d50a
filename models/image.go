package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GeneratedImage is one produced artifact. The URL points at the remote host;
// no local copy exists until the download subsystem saves one.
type GeneratedImage struct {
	ID             string `json:"id"`
	URL            string `json:"url"`
	Prompt         string `json:"prompt"`
	Style          string `json:"style,omitempty"`
	Size           string `json:"size"`
	Timestamp      int64  `json:"timestamp"`
	GenerationTime int64  `json:"generationTime,omitempty"`
}

// NewImageID returns a unique identifier for a generated image.
// IDs are assigned at insertion time, never by the remote service.
func NewImageID() string {
	return fmt.Sprintf("img_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

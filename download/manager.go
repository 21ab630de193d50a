// Package download saves generated images to the local download directory,
// one at a time, with a small thumbnail written next to each original.
package download

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // decoding
	_ "image/png"  // decoding
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // decoding

	"imagegen/models"
)

const (
	// interItemDelay spaces out multi-image downloads so the remote host is
	// not hammered with back-to-back fetches.
	interItemDelay = 500 * time.Millisecond
	thumbnailMax   = 256
)

// State is the transient download state, reset between operations.
type State struct {
	IsDownloading    bool   `json:"isDownloading"`
	DownloadProgress int    `json:"downloadProgress"`
	Error            string `json:"error,omitempty"`
	LastDownloadedID string `json:"lastDownloadedId,omitempty"`
}

// Manager downloads images serially and tracks progress. Only one logical
// flow mutates it, but snapshots may be read while a download runs.
type Manager struct {
	dir    string
	client *http.Client
	delay  time.Duration

	mu    sync.Mutex
	state State
}

// NewManager creates a manager writing into dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:    dir,
		client: &http.Client{Timeout: 60 * time.Second},
		delay:  interItemDelay,
	}
}

// State returns a snapshot of the current download state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ClearError drops the last error message.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Error = ""
}

func (m *Manager) setProgress(p int) {
	m.mu.Lock()
	m.state.DownloadProgress = p
	m.mu.Unlock()
}

// Download fetches one image and saves it under the given filename, or a
// generated one when customFilename is empty. Caller-supplied names are
// reduced to their final path element so they cannot escape the download
// directory.
func (m *Manager) Download(ctx context.Context, img models.GeneratedImage, customFilename string) error {
	m.mu.Lock()
	m.state = State{IsDownloading: true}
	m.mu.Unlock()

	filename := filepath.Base(customFilename)
	if filename == "." || filename == ".." || filename == string(filepath.Separator) {
		filename = ""
	}
	if filename == "" {
		filename = GenerateFilename(img.Prompt, img.Style, img.Size)
	}
	m.setProgress(50)

	err := m.fetchAndSave(ctx, img, filename)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsDownloading = false
	if err != nil {
		m.state.DownloadProgress = 0
		m.state.Error = err.Error()
		return err
	}
	m.state.DownloadProgress = 100
	m.state.LastDownloadedID = img.ID
	return nil
}

// DownloadAll fetches images one at a time with a fixed delay between items.
// Per-item failures do not stop the remaining downloads; a partial outcome is
// reported as a soft error after the last item.
func (m *Manager) DownloadAll(ctx context.Context, images []models.GeneratedImage) error {
	if len(images) == 0 {
		return nil
	}

	m.mu.Lock()
	m.state = State{IsDownloading: true}
	m.mu.Unlock()

	successCount := 0
	total := len(images)
	for i, img := range images {
		filename := GenerateFilename(img.Prompt, img.Style, img.Size)
		filename = strings.TrimSuffix(filename, ".png") + fmt.Sprintf("_%d.png", i+1)

		if err := m.fetchAndSave(ctx, img, filename); err != nil {
			log.Printf("Download %d/%d failed: %v", i+1, total, err)
		} else {
			successCount++
			m.mu.Lock()
			m.state.LastDownloadedID = img.ID
			m.mu.Unlock()
		}
		m.setProgress((i + 1) * 100 / total)

		if i < total-1 {
			select {
			case <-time.After(m.delay):
			case <-ctx.Done():
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsDownloading = false
	m.state.DownloadProgress = 100
	if successCount < total {
		m.state.Error = fmt.Sprintf("Downloaded %d/%d images successfully", successCount, total)
		return fmt.Errorf("download: %d of %d images failed", total-successCount, total)
	}
	return nil
}

// fetchAndSave writes the original bytes and a webp thumbnail next to it.
// The URL must answer a HEAD probe with an image content type before any
// bytes are fetched.
func (m *Manager) fetchAndSave(ctx context.Context, img models.GeneratedImage, filename string) error {
	if !ValidateImageURL(ctx, m.client, img.URL) {
		return fmt.Errorf("download: %s did not validate as an image", img.URL)
	}

	data, contentType, err := Fetch(ctx, m.client, img.URL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("download: failed to create directory: %w", err)
	}
	path := filepath.Join(m.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("download: failed to save image: %w", err)
	}
	log.Printf("Image saved to %s (%s, %d bytes)", path, contentType, len(data))

	m.writeThumbnail(path, data)
	return nil
}

// writeThumbnail is best-effort: an undecodable payload keeps its original
// file but gets no thumbnail.
func (m *Manager) writeThumbnail(path string, data []byte) {
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("Skipping thumbnail for %s: %v", path, err)
		return
	}

	thumb := resize.Thumbnail(thumbnailMax, thumbnailMax, decoded, resize.Lanczos3)
	var buf bytes.Buffer
	if err := webp.Encode(&buf, thumb, &webp.Options{Quality: 80}); err != nil {
		log.Printf("Failed to encode thumbnail for %s: %v", path, err)
		return
	}

	thumbPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".thumb.webp"
	if err := os.WriteFile(thumbPath, buf.Bytes(), 0644); err != nil {
		log.Printf("Failed to write thumbnail %s: %v", thumbPath, err)
		return
	}
	log.Printf("Thumbnail written to %s (decoded %s)", thumbPath, format)
}

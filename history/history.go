package history

import (
	"context"
	"encoding/json"
	"log"

	"imagegen/catalog"
	"imagegen/models"
)

// Fixed storage keys. Each holds one serialized JSON value.
const (
	historyKey      = "ai-image-generator-history"
	settingsKey     = "ai-image-generator-settings"
	systemPromptKey = "ai-image-generator-system-prompt"
)

// Store wraps the KV port with history/settings semantics. All mutations
// re-serialize and rewrite the full value; there is no delta persistence.
type Store struct {
	kv       KV
	maxItems int
}

// NewStore creates a store with the default history cap.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, maxItems: catalog.MaxHistoryItems}
}

// load reads the full history list. Missing or malformed data degrades to an
// empty list rather than failing.
func (s *Store) load(ctx context.Context) []models.GeneratedImage {
	raw, ok, err := s.kv.Get(ctx, historyKey)
	if err != nil {
		log.Printf("Warning: could not read history: %v", err)
		return []models.GeneratedImage{}
	}
	if !ok {
		return []models.GeneratedImage{}
	}
	var images []models.GeneratedImage
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		log.Printf("Warning: stored history is malformed, resetting: %v", err)
		return []models.GeneratedImage{}
	}
	return images
}

func (s *Store) save(ctx context.Context, images []models.GeneratedImage) error {
	data, err := json.Marshal(images)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, historyKey, string(data))
}

// List returns the most recent entries, newest first. limit <= 0 returns the
// whole stored list.
func (s *Store) List(ctx context.Context, limit int) []models.GeneratedImage {
	images := s.load(ctx)
	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}
	return images
}

// Add prepends images and truncates the list to the cap; the oldest entries
// beyond it are silently dropped.
func (s *Store) Add(ctx context.Context, images ...models.GeneratedImage) error {
	if len(images) == 0 {
		return nil
	}
	list := append(append([]models.GeneratedImage{}, images...), s.load(ctx)...)
	if len(list) > s.maxItems {
		list = list[:s.maxItems]
	}
	return s.save(ctx, list)
}

// Get returns a single entry by id.
func (s *Store) Get(ctx context.Context, id string) (models.GeneratedImage, bool) {
	for _, img := range s.load(ctx) {
		if img.ID == id {
			return img, true
		}
	}
	return models.GeneratedImage{}, false
}

// Remove filters out the entry with the given id. The second return reports
// whether anything was removed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	images := s.load(ctx)
	kept := images[:0]
	for _, img := range images {
		if img.ID != id {
			kept = append(kept, img)
		}
	}
	if len(kept) == len(images) {
		return false, nil
	}
	return true, s.save(ctx, kept)
}

// Clear empties the history.
func (s *Store) Clear(ctx context.Context) error {
	return s.save(ctx, []models.GeneratedImage{})
}

package history

import (
	"context"
	"encoding/json"
	"log"

	"imagegen/models"
)

// LoadSettings returns the persisted settings record, or the defaults when
// nothing was stored yet or the stored value is malformed.
func (s *Store) LoadSettings(ctx context.Context) models.UserSettings {
	raw, ok, err := s.kv.Get(ctx, settingsKey)
	if err != nil {
		log.Printf("Warning: could not read settings: %v", err)
		return models.DefaultSettings()
	}
	if !ok {
		return models.DefaultSettings()
	}
	var settings models.UserSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Printf("Warning: stored settings are malformed, resetting: %v", err)
		return models.DefaultSettings()
	}
	return settings
}

// SaveSettings persists the full record.
func (s *Store) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, settingsKey, string(data))
}

// ResetSettings restores the defaults.
func (s *Store) ResetSettings(ctx context.Context) error {
	return s.SaveSettings(ctx, models.DefaultSettings())
}

// SystemPrompt returns the free-text system-prompt override, empty when none
// is set.
func (s *Store) SystemPrompt(ctx context.Context) string {
	raw, ok, err := s.kv.Get(ctx, systemPromptKey)
	if err != nil {
		log.Printf("Warning: could not read system prompt: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	return raw
}

// SaveSystemPrompt stores the override verbatim.
func (s *Store) SaveSystemPrompt(ctx context.Context, prompt string) error {
	return s.kv.Set(ctx, systemPromptKey, prompt)
}

// ResetSystemPrompt clears the override so the built-in defaults apply.
func (s *Store) ResetSystemPrompt(ctx context.Context) error {
	return s.kv.Set(ctx, systemPromptKey, "")
}

package history

import (
	"context"
	"fmt"
	"testing"

	"imagegen/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	return NewStore(kv)
}

func testImage(i int) models.GeneratedImage {
	return models.GeneratedImage{
		ID:        fmt.Sprintf("img_%d", i),
		URL:       fmt.Sprintf("https://example.com/%d.png", i),
		Prompt:    fmt.Sprintf("prompt %d", i),
		Size:      "1024x1024",
		Timestamp: int64(1000 + i),
	}
}

func TestHistoryEmptyByDefault(t *testing.T) {
	store := newTestStore(t)
	images := store.List(context.Background(), 0)
	if len(images) != 0 {
		t.Errorf("List() on empty store = %d entries, want 0", len(images))
	}
}

func TestHistoryAddPrependsNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := store.Add(ctx, testImage(i)); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	images := store.List(ctx, 0)
	if len(images) != 3 {
		t.Fatalf("List() = %d entries, want 3", len(images))
	}
	if images[0].ID != "img_3" || images[2].ID != "img_1" {
		t.Errorf("order = [%s ... %s], want newest first", images[0].ID, images[2].ID)
	}
}

func TestHistoryCapNeverExceeded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 55; i++ {
		if err := store.Add(ctx, testImage(i)); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	images := store.List(ctx, 0)
	if len(images) != 50 {
		t.Fatalf("List() = %d entries, want the cap of 50", len(images))
	}
	// Newest survives, oldest entries beyond the cap are gone.
	if images[0].ID != "img_55" {
		t.Errorf("newest = %s, want img_55", images[0].ID)
	}
	if images[49].ID != "img_6" {
		t.Errorf("oldest retained = %s, want img_6", images[49].ID)
	}
}

func TestHistoryBatchAddKeepsBatchOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, testImage(1)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Add(ctx, testImage(2), testImage(3)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	images := store.List(ctx, 0)
	if len(images) != 3 {
		t.Fatalf("List() = %d entries, want 3", len(images))
	}
	if images[0].ID != "img_2" || images[1].ID != "img_3" || images[2].ID != "img_1" {
		t.Errorf("order = [%s %s %s], want batch prepended in order", images[0].ID, images[1].ID, images[2].ID)
	}
}

func TestHistoryListLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 30; i++ {
		if err := store.Add(ctx, testImage(i)); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	if got := store.List(ctx, 20); len(got) != 20 {
		t.Errorf("List(20) = %d entries, want 20", len(got))
	}
	if got := store.List(ctx, 0); len(got) != 30 {
		t.Errorf("List(0) = %d entries, want the full 30", len(got))
	}
}

func TestHistoryGetAndRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := store.Add(ctx, testImage(i)); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	img, ok := store.Get(ctx, "img_2")
	if !ok || img.Prompt != "prompt 2" {
		t.Fatalf("Get(img_2) = %+v %v", img, ok)
	}

	removed, err := store.Remove(ctx, "img_2")
	if err != nil || !removed {
		t.Fatalf("Remove(img_2) = %v, %v", removed, err)
	}
	if _, ok := store.Get(ctx, "img_2"); ok {
		t.Error("Get(img_2) found the entry after removal")
	}
	if got := store.List(ctx, 0); len(got) != 2 {
		t.Errorf("List() = %d entries after removal, want 2", len(got))
	}

	removed, err = store.Remove(ctx, "no-such-id")
	if err != nil || removed {
		t.Errorf("Remove(no-such-id) = %v, %v, want false, nil", removed, err)
	}
}

func TestHistoryClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, testImage(1)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := store.List(ctx, 0); len(got) != 0 {
		t.Errorf("List() = %d entries after clear, want 0", len(got))
	}
}

func TestHistoryMalformedDataDegradesToEmpty(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	store := NewStore(kv)
	ctx := context.Background()

	if err := kv.Set(ctx, historyKey, "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := store.List(ctx, 0); len(got) != 0 {
		t.Errorf("List() = %d entries over malformed data, want 0", len(got))
	}

	// Writes recover from the malformed value.
	if err := store.Add(ctx, testImage(1)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := store.List(ctx, 0); len(got) != 1 {
		t.Errorf("List() = %d entries after recovery, want 1", len(got))
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if got := store.LoadSettings(ctx); got != models.DefaultSettings() {
		t.Errorf("LoadSettings() on empty store = %+v, want defaults", got)
	}

	want := models.UserSettings{
		DefaultSize:  "512x512",
		DefaultStyle: "fantasy",
		Theme:        "dark",
		AutoEnhance:  true,
		SaveHistory:  false,
	}
	if err := store.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if got := store.LoadSettings(ctx); got != want {
		t.Errorf("LoadSettings() = %+v, want %+v", got, want)
	}

	if err := store.ResetSettings(ctx); err != nil {
		t.Fatalf("ResetSettings() error = %v", err)
	}
	if got := store.LoadSettings(ctx); got != models.DefaultSettings() {
		t.Errorf("LoadSettings() after reset = %+v, want defaults", got)
	}
}

func TestSettingsMalformedDataDegradesToDefaults(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	store := NewStore(kv)
	ctx := context.Background()

	if err := kv.Set(ctx, settingsKey, "]["); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := store.LoadSettings(ctx); got != models.DefaultSettings() {
		t.Errorf("LoadSettings() over malformed data = %+v, want defaults", got)
	}
}

func TestSystemPromptRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if got := store.SystemPrompt(ctx); got != "" {
		t.Errorf("SystemPrompt() on empty store = %q, want empty", got)
	}

	if err := store.SaveSystemPrompt(ctx, "Always answer in haiku."); err != nil {
		t.Fatalf("SaveSystemPrompt() error = %v", err)
	}
	if got := store.SystemPrompt(ctx); got != "Always answer in haiku." {
		t.Errorf("SystemPrompt() = %q", got)
	}

	if err := store.ResetSystemPrompt(ctx); err != nil {
		t.Fatalf("ResetSystemPrompt() error = %v", err)
	}
	if got := store.SystemPrompt(ctx); got != "" {
		t.Errorf("SystemPrompt() after reset = %q, want empty", got)
	}
}

func TestFileKVGetMissingKey(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	value, ok, err := kv.Get(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || value != "" {
		t.Errorf("Get() = %q, %v, want empty, false", value, ok)
	}
}

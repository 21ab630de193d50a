package api

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"

	"imagegen/aiclient"
	"imagegen/download"
	"imagegen/generation"
	"imagegen/history"
	"imagegen/models"
)

func TestDownloadEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/download", map[string]any{"ids": []string{}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty ids: status = %d, want 400", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPost, "/download", map[string]any{"ids": []string{"no-such-id"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestDownloadEndpointSingle(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	env := newTestEnv(t)
	img := models.GeneratedImage{ID: "img_1", URL: srv.URL, Prompt: "a cat", Size: "512x512"}
	if err := env.store.Add(context.Background(), img); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	rec, parsed := env.do(t, http.MethodPost, "/download", map[string]any{
		"ids":      []string{"img_1"},
		"filename": "cat.png",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	if parsed["success"] != true {
		t.Error("success = false")
	}
	state := parsed["state"].(map[string]any)
	if state["downloadProgress"].(float64) != 100 {
		t.Errorf("state.downloadProgress = %v, want 100", state["downloadProgress"])
	}
	if state["lastDownloadedId"] != "img_1" {
		t.Errorf("state.lastDownloadedId = %v, want img_1", state["lastDownloadedId"])
	}
}

func TestDownloadEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	env := newTestEnv(t)
	img := models.GeneratedImage{ID: "img_1", URL: srv.URL, Prompt: "a cat", Size: "512x512"}
	if err := env.store.Add(context.Background(), img); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	rec, parsed := env.do(t, http.MethodPost, "/download", map[string]any{"ids": []string{"img_1"}})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if parsed["success"] != false {
		t.Error("success = true")
	}
	if _, ok := parsed["state"]; !ok {
		t.Error("response missing download state")
	}
}

func TestGenerateAutoSavesLocalCopies(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	kv, err := history.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	store := history.NewStore(kv)
	mock := &aiclient.Mock{
		GenerateFunc: func(ctx context.Context, req aiclient.GenerationRequest) (aiclient.GenerationResult, error) {
			return aiclient.GenerationResult{ImageURL: srv.URL + "/img.png"}, nil
		},
	}
	dir := t.TempDir()
	downloads := download.NewManager(dir)

	router := mux.NewRouter()
	NewHandler(mock, generation.NewSession(generation.NewOrchestrator(mock)), store, downloads, true).Register(router)
	env := &testEnv{mock: mock, store: store, router: router}

	rec, _ := env.do(t, http.MethodPost, "/generate", map[string]any{"prompt": "a cat"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading download dir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("download dir is empty, want a saved local copy")
	}
}

func TestDownloadStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec, parsed := env.do(t, http.MethodGet, "/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if parsed["isDownloading"] != false {
		t.Errorf("isDownloading = %v, want false", parsed["isDownloading"])
	}
}

package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"imagegen/aiclient"
	"imagegen/api"
	"imagegen/config"
	"imagegen/download"
	"imagegen/models"
	"imagegen/generation"
	"imagegen/history"
	"imagegen/middleware"
)

func main() {
	config.LoadConfig()
	middleware.InitSessionStore()

	kv := newKV()
	store := history.NewStore(kv)
	client := aiclient.New(&config.AppConfig.AIService)
	session := generation.NewSession(generation.NewOrchestrator(client))
	downloads := download.NewManager(config.AppConfig.Settings.DownloadDir)

	r := mux.NewRouter()
	r.Use(middleware.Recover, middleware.CORS)

	// Web routes
	r.Handle("/", middleware.WebAuthMiddleware(http.HandlerFunc(serveIndex))).Methods(http.MethodGet)
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/login", serveLogin).Methods(http.MethodGet)
	r.HandleFunc("/login", handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", handleLogout).Methods(http.MethodGet, http.MethodPost)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// API routes
	apiRouter := r.PathPrefix("/").Subrouter()
	apiRouter.Use(middleware.APIKeyAuthMiddleware)
	api.NewHandler(client, session, store, downloads, config.AppConfig.Settings.SaveLocalCopy).Register(apiRouter)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on :%s...", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Could not start server: %s\n", err)
	}
}

// newKV selects the persistence backend from configuration.
func newKV() history.KV {
	cfg := config.AppConfig.Storage
	switch cfg.Backend {
	case "redis":
		kv, err := history.NewRedisKV(context.Background(), cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to init Redis storage: %v", err)
		}
		log.Printf("Using Redis storage at %s", cfg.RedisAddr)
		return kv
	case "file", "":
		kv, err := history.NewFileKV(cfg.Path)
		if err != nil {
			log.Fatalf("Failed to init file storage: %v", err)
		}
		log.Printf("Using file storage at %s", cfg.Path)
		return kv
	default:
		log.Fatalf("Unknown storage backend: %q", cfg.Backend)
		return nil
	}
}

// serveIndex renders the UI. A share link reopens it with the shared entry's
// parameters prefilled.
func serveIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFiles("templates/index.html")
	if err != nil {
		http.Error(w, "Could not parse template", http.StatusInternalServerError)
		return
	}

	var data struct {
		Shared    models.GeneratedImage
		HasShared bool
	}
	if img, ok := download.ParseShareURL(r.URL.Query()); ok {
		data.Shared = img
		data.HasShared = true
	}
	tmpl.Execute(w, data)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "imagegen",
	})
}

func serveLogin(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFiles("templates/login.html")
	if err != nil {
		http.Error(w, "Could not parse template", http.StatusInternalServerError)
		return
	}
	tmpl.Execute(w, nil)
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Could not parse form", http.StatusBadRequest)
		return
	}

	if r.FormValue("password") != config.AppConfig.Settings.WebPassword {
		log.Println("Failed login attempt")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	session, _ := middleware.Store.Get(r, middleware.SessionName)
	session.Values[middleware.UserSessionKey] = true
	if err := session.Save(r, w); err != nil {
		log.Printf("Error saving session: %v", err)
		http.Error(w, "Could not save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.Store.Get(r, middleware.SessionName)
	session.Values[middleware.UserSessionKey] = false
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Printf("Error saving session: %v", err)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

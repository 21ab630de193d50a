package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AIService holds the connection details for the remote chat-completions
// endpoint that performs both image generation and prompt enhancement.
type AIService struct {
	Endpoint     string `json:"AI_ENDPOINT"`
	APIKey       string `json:"AI_API_KEY"`
	CustomerID   string `json:"AI_CUSTOMER_ID"`
	ImageModel   string `json:"AI_IMAGE_MODEL"`
	EnhanceModel string `json:"AI_ENHANCE_MODEL"`
}

// Storage selects the key-value backend for persisted history and settings.
type Storage struct {
	Backend   string `json:"STORAGE_BACKEND"` // "file" or "redis"
	Path      string `json:"STORAGE_PATH"`
	RedisAddr string `json:"REDIS_ADDR"`
}

// Settings holds optional application settings.
type Settings struct {
	SaveLocalCopy bool   `json:"SAVE_LOCAL_COPY"`
	DownloadDir   string `json:"DOWNLOAD_DIR"`
	WebPassword   string `json:"WEB_PASSWORD"`
	SessionSecret string `json:"SESSION_SECRET"`
	APIKey        string `json:"IMAGEGEN_API_KEY"`
}

// Config holds the entire application configuration.
type Config struct {
	AIService AIService `json:"AI_SERVICE"`
	Storage   Storage   `json:"STORAGE"`
	Settings  Settings  `json:"SETTINGS"`
}

// AppConfig is the global configuration instance.
var AppConfig *Config

// LoadConfig loads the configuration from defaults, conf.json, .env, and
// environment variables, in that order of precedence.
func LoadConfig() {
	// 1. Set default values
	AppConfig = &Config{
		AIService: AIService{
			Endpoint:     "https://oi-server.onrender.com/",
			ImageModel:   "replicate/black-forest-labs/flux-1.1-pro",
			EnhanceModel: "openrouter/claude-sonnet-4",
		},
		Storage: Storage{
			Backend:   "file",
			Path:      "data",
			RedisAddr: "localhost:6379",
		},
		Settings: Settings{
			SaveLocalCopy: true,
			DownloadDir:   "downloads",
			SessionSecret: "a_very_long_and_random_secret_string",
		},
	}

	// 2. Load from conf.json
	file, err := os.Open("conf.json")
	if err == nil {
		defer file.Close()
		decoder := json.NewDecoder(file)
		if err := decoder.Decode(AppConfig); err != nil {
			log.Printf("Warning: Could not decode conf.json: %v", err)
		} else {
			log.Println("Loaded configuration from conf.json")
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Could not open conf.json: %v", err)
	}

	// 3. Load from .env file (will override conf.json)
	godotenv.Load()

	// 4. Load from environment variables (will override everything)
	loadFromEnv()

	log.Println("Configuration loaded successfully.")
}

// loadFromEnv loads configuration from environment variables, overriding
// existing values.
func loadFromEnv() {
	// AI service
	if v := os.Getenv("AI_ENDPOINT"); v != "" {
		AppConfig.AIService.Endpoint = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		AppConfig.AIService.APIKey = v
	}
	if v := os.Getenv("AI_CUSTOMER_ID"); v != "" {
		AppConfig.AIService.CustomerID = v
	}
	if v := os.Getenv("AI_IMAGE_MODEL"); v != "" {
		AppConfig.AIService.ImageModel = v
	}
	if v := os.Getenv("AI_ENHANCE_MODEL"); v != "" {
		AppConfig.AIService.EnhanceModel = v
	}

	// Storage
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		AppConfig.Storage.Backend = v
	}
	if v := os.Getenv("STORAGE_PATH"); v != "" {
		AppConfig.Storage.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		AppConfig.Storage.RedisAddr = v
	}

	// Settings
	if v := os.Getenv("SAVE_LOCAL_COPY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			AppConfig.Settings.SaveLocalCopy = b
		}
	}
	if v := os.Getenv("DOWNLOAD_DIR"); v != "" {
		AppConfig.Settings.DownloadDir = v
	}
	if v := os.Getenv("WEB_PASSWORD"); v != "" {
		AppConfig.Settings.WebPassword = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		AppConfig.Settings.SessionSecret = v
	}
	if v := os.Getenv("IMAGEGEN_API_KEY"); v != "" {
		AppConfig.Settings.APIKey = v
	}
}

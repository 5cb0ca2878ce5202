package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds environment driven configuration values.
// Sensitive data never has defaults inside code and must be provided via the
// config file or the environment. The loaded value is passed explicitly into
// each component at startup; nothing reads configuration ambiently.
type AppConfig struct {
	AppName string
	AppPort string

	// Shared secret expected in the X-API-Key header on every character route.
	APIKey string

	// Image generation provider (OpenAI-compatible images endpoint).
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	ImageModel         string
	ImageSize          string
	ImageQuality       string
	ProviderTimeoutSec int
	DownloadTimeoutSec int

	// Static serving root; generated images live under <StaticDir>/images.
	StaticDir string

	// Persistence: "json" (single-document file store) or "mysql" (gorm).
	StoreBackend string
	StorageFile  string
	DatabaseURI  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string

	AllowedOrigins []string

	// Gin framework configuration
	GinMode string
	GinPath string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// ImagesDir returns the directory that holds generated character images.
func (c AppConfig) ImagesDir() string {
	return filepath.Join(c.StaticDir, "images")
}

// ProviderTimeout bounds the generation call to the upstream provider.
func (c AppConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSec) * time.Second
}

// DownloadTimeout bounds the image download that follows a generation.
func (c AppConfig) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSec) * time.Second
}

// Load builds the application configuration.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() (AppConfig, error) {
	var cfg AppConfig

	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.APIKey == "" {
		return cfg, errors.New("API_KEY must be set in environment variables")
	}
	if cfg.OpenAIAPIKey == "" {
		return cfg, errors.New("OPENAI_API_KEY must be set in environment variables")
	}
	return cfg, nil
}

// fileConfig mirrors AppConfig for the optional JSON config file.
type fileConfig struct {
	AppName            string   `json:"AppName"`
	AppPort            string   `json:"AppPort"`
	APIKey             string   `json:"APIKey"`
	OpenAIAPIKey       string   `json:"OpenAIAPIKey"`
	OpenAIBaseURL      string   `json:"OpenAIBaseURL"`
	ImageModel         string   `json:"ImageModel"`
	ImageSize          string   `json:"ImageSize"`
	ImageQuality       string   `json:"ImageQuality"`
	ProviderTimeoutSec int      `json:"ProviderTimeoutSec"`
	DownloadTimeoutSec int      `json:"DownloadTimeoutSec"`
	StaticDir          string   `json:"StaticDir"`
	StoreBackend       string   `json:"StoreBackend"`
	StorageFile        string   `json:"StorageFile"`
	DatabaseURI        string   `json:"DatabaseURI"`
	DBHost             string   `json:"DBHost"`
	DBPort             string   `json:"DBPort"`
	DBUser             string   `json:"DBUser"`
	DBPassword         string   `json:"DBPassword"`
	DBName             string   `json:"DBName"`
	AllowedOrigins     []string `json:"AllowedOrigins"`
	GinMode            string   `json:"GinMode"`
	GinPath            string   `json:"GinPath"`
	LogLevel           string   `json:"LogLevel"`
	LogPath            string   `json:"LogPath"`
	LogMaxSizeMB       int      `json:"LogMaxSizeMB"`
	LogMaxBackups      int      `json:"LogMaxBackups"`
	LogMaxAgeDays      int      `json:"LogMaxAgeDays"`
	LogCompress        bool     `json:"LogCompress"`
}

// loadJSONConfig reads the JSON file into cfg if present. Returns an error
// only for invalid JSON; a missing file is ignored.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var fc fileConfig
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return err
	}

	out.AppName = fc.AppName
	out.AppPort = fc.AppPort
	out.APIKey = fc.APIKey
	out.OpenAIAPIKey = fc.OpenAIAPIKey
	out.OpenAIBaseURL = fc.OpenAIBaseURL
	out.ImageModel = fc.ImageModel
	out.ImageSize = fc.ImageSize
	out.ImageQuality = fc.ImageQuality
	out.ProviderTimeoutSec = fc.ProviderTimeoutSec
	out.DownloadTimeoutSec = fc.DownloadTimeoutSec
	out.StaticDir = fc.StaticDir
	out.StoreBackend = fc.StoreBackend
	out.StorageFile = fc.StorageFile
	out.DatabaseURI = fc.DatabaseURI
	out.DBHost = fc.DBHost
	out.DBPort = fc.DBPort
	out.DBUser = fc.DBUser
	out.DBPassword = fc.DBPassword
	out.DBName = fc.DBName
	out.AllowedOrigins = fc.AllowedOrigins
	out.GinMode = fc.GinMode
	out.GinPath = fc.GinPath
	out.LogLevel = fc.LogLevel
	out.LogPath = fc.LogPath
	out.LogMaxSizeMB = fc.LogMaxSizeMB
	out.LogMaxBackups = fc.LogMaxBackups
	out.LogMaxAgeDays = fc.LogMaxAgeDays
	out.LogCompress = fc.LogCompress
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppName == "" {
		c.AppName = "Fictional Character Creator"
	}
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if c.ImageModel == "" {
		c.ImageModel = "dall-e-3"
	}
	if c.ImageSize == "" {
		c.ImageSize = "1024x1024"
	}
	if c.ImageQuality == "" {
		c.ImageQuality = "standard"
	}
	if c.ProviderTimeoutSec == 0 {
		c.ProviderTimeoutSec = 120
	}
	if c.DownloadTimeoutSec == 0 {
		c.DownloadTimeoutSec = 60
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = "json"
	}
	if c.StorageFile == "" {
		c.StorageFile = "characters_db.json"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "characters"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := os.Getenv("APP_NAME"); v != "" {
		c.AppName = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		c.AppPort = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}
	if v := os.Getenv("IMAGE_MODEL"); v != "" {
		c.ImageModel = v
	}
	if v := os.Getenv("IMAGE_SIZE"); v != "" {
		c.ImageSize = v
	}
	if v := os.Getenv("IMAGE_QUALITY"); v != "" {
		c.ImageQuality = v
	}
	if v := os.Getenv("PROVIDER_TIMEOUT_SEC"); v != "" {
		c.ProviderTimeoutSec = mustParseInt(v, c.ProviderTimeoutSec)
	}
	if v := os.Getenv("DOWNLOAD_TIMEOUT_SEC"); v != "" {
		c.DownloadTimeoutSec = mustParseInt(v, c.DownloadTimeoutSec)
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.StoreBackend = strings.ToLower(v)
	}
	if v := os.Getenv("STORAGE_FILE"); v != "" {
		c.StorageFile = v
	}
	if v := os.Getenv("DATABASE_URI"); v != "" {
		c.DatabaseURI = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DBHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.DBPort = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.DBUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := os.Getenv("GIN_PATH"); v != "" {
		c.GinPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt(v, c.LogMaxSizeMB)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt(v, c.LogMaxBackups)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt(v, c.LogMaxAgeDays)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string, fallback int) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

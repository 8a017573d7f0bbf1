package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// App
	Port      string
	Env       string
	LogLevel  string
	Transport string // "http" or "stdio"

	CORSOrigins []string
	HTTPTimeout time.Duration

	// Reddit
	RedditAPIURL          string
	RedditAuthURL         string
	RedditClientID        string
	RedditClientSecret    string
	RedditUsername        string
	RedditPassword        string
	RedditApplicationName string
	CredentialsPath       string

	// Twitter
	TwitterBearerToken string
	TwitterAPIURL      string

	// YouTube
	YouTubeAPIKey        string
	YouTubeAPIURL        string
	YouTubeTranscriptURL string

	// Cache
	CacheDir     string
	CacheEnabled bool
}

// fileConfig mirrors the optional YAML file. Environment variables win over it.
type fileConfig struct {
	Port      string `yaml:"port"`
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`
	Transport string `yaml:"transport"`
	CORS      struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
	HTTPTimeout string `yaml:"http_timeout"`
	Reddit      struct {
		APIURL          string `yaml:"api_url"`
		AuthURL         string `yaml:"auth_url"`
		ClientID        string `yaml:"client_id"`
		ClientSecret    string `yaml:"client_secret"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		ApplicationName string `yaml:"application_name"`
		CredentialsPath string `yaml:"credentials_path"`
	} `yaml:"reddit"`
	Twitter struct {
		BearerToken string `yaml:"bearer_token"`
		APIURL      string `yaml:"api_url"`
	} `yaml:"twitter"`
	YouTube struct {
		APIKey        string `yaml:"api_key"`
		APIURL        string `yaml:"api_url"`
		TranscriptURL string `yaml:"transcript_url"`
	} `yaml:"youtube"`
	Cache struct {
		Dir     string `yaml:"dir"`
		Enabled *bool  `yaml:"enabled"`
	} `yaml:"cache"`
}

// Load reads configuration from the optional YAML file and environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	fc, err := readFile(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		return nil, err
	}

	cacheEnabled := true
	if fc.Cache.Enabled != nil {
		cacheEnabled = *fc.Cache.Enabled
	}

	cfg := &Config{
		Port:                  getEnv("PORT", or(fc.Port, "3232")),
		Env:                   getEnv("ENV", or(fc.Env, "development")),
		LogLevel:              getEnv("LOG_LEVEL", fc.LogLevel),
		Transport:             getEnv("TRANSPORT", or(fc.Transport, "http")),
		CORSOrigins:           getEnvList("CORS_ORIGINS", orList(fc.CORS.Origins, []string{"*"})),
		HTTPTimeout:           getEnvDuration("HTTP_TIMEOUT", parseDuration(fc.HTTPTimeout)),
		RedditAPIURL:          getEnv("REDDIT_API_URL", or(fc.Reddit.APIURL, "https://oauth.reddit.com")),
		RedditAuthURL:         getEnv("REDDIT_AUTH_URL", or(fc.Reddit.AuthURL, "https://www.reddit.com/api/v1/access_token")),
		RedditClientID:        getEnv("REDDIT_CLIENT_ID", fc.Reddit.ClientID),
		RedditClientSecret:    getEnv("REDDIT_CLIENT_SECRET", fc.Reddit.ClientSecret),
		RedditUsername:        getEnv("REDDIT_USERNAME", fc.Reddit.Username),
		RedditPassword:        getEnv("REDDIT_PASSWORD", fc.Reddit.Password),
		RedditApplicationName: getEnv("REDDIT_APPLICATION_NAME", or(fc.Reddit.ApplicationName, "mcp-servers")),
		CredentialsPath:       getEnv("CREDENTIALS_PATH", or(fc.Reddit.CredentialsPath, "credentials.json")),
		TwitterBearerToken:    getEnv("TWITTER_BEARER_TOKEN", fc.Twitter.BearerToken),
		TwitterAPIURL:         getEnv("TWITTER_API_URL", or(fc.Twitter.APIURL, "https://api.twitter.com")),
		YouTubeAPIKey:         getEnv("YOUTUBE_API_KEY", fc.YouTube.APIKey),
		YouTubeAPIURL:         getEnv("YOUTUBE_API_URL", or(fc.YouTube.APIURL, "https://www.googleapis.com/youtube/v3")),
		YouTubeTranscriptURL:  getEnv("YOUTUBE_TRANSCRIPT_URL", or(fc.YouTube.TranscriptURL, "https://www.youtube.com/api/timedtext")),
		CacheDir:              getEnv("CACHE_DIR", or(fc.Cache.Dir, "cache")),
		CacheEnabled:          getEnvBool("CACHE_ENABLED", cacheEnabled),
	}

	// Older deployments set REDDIT_API_URL with a trailing /api
	cfg.RedditAPIURL = strings.TrimSuffix(strings.TrimSuffix(cfg.RedditAPIURL, "/"), "/api")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
// Provider credentials are optional here; each provider reports them missing at call time.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Transport != "http" && c.Transport != "stdio" {
		return fmt.Errorf("TRANSPORT must be http or stdio, got %q", c.Transport)
	}
	if c.RedditAPIURL == "" {
		return fmt.Errorf("REDDIT_API_URL is required")
	}
	if c.CacheEnabled && c.CacheDir == "" {
		return fmt.Errorf("CACHE_DIR is required when the cache is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func readFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func orList(value, fallback []string) []string {
	if len(value) > 0 {
		return value
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GeminiBaseURL is the model collection root of the Gemini REST API
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// AppName and AppVersion are reported by /health and the startup banner
const (
	AppName    = "Vidhi Saarathi AI Backend"
	AppVersion = "4.3.1"
)

const defaultAuthSecret = "change_this_in_production"

// ModelConfig describes one generation endpoint
type ModelConfig struct {
	Name        string        `yaml:"name"`
	URL         string        `yaml:"url"`
	Priority    int           `yaml:"priority"`
	Timeout     time.Duration `yaml:"timeout"`
	Description string        `yaml:"description"`
}

// KeyConfig describes one API credential
type KeyConfig struct {
	Name     string `yaml:"name"`
	Key      string `yaml:"key"`
	Priority int    `yaml:"priority"`
}

// Config represents the application configuration
type Config struct {
	Port     int
	Debug    bool
	Version  bool
	LogLevel string

	Models            []ModelConfig
	Keys              []KeyConfig
	MaxRetries        int
	BaseDelay         time.Duration
	MinResponseLength int
	QuotaTimeout      time.Duration
	ProxyURL          string

	AuthSecret    string
	TokenTTL      time.Duration
	SignedURLTTL  time.Duration
	SignupCaptcha bool

	DatabaseURL    string
	DataDir        string
	UploadDir      string
	FrontendDir    string
	PublicBaseURL  string
	AllowedOrigins []string
	MaxUploadSize  int64
	MaxQueryLength int

	// Args holds the positional arguments left after flag parsing
	Args []string
}

// DefaultModels returns the built-in Gemini fallback chain
func DefaultModels() []ModelConfig {
	return []ModelConfig{
		{
			Name:        "gemini-2.5-pro",
			URL:         GenerateURL("gemini-2.5-pro"),
			Priority:    1,
			Timeout:     180 * time.Second,
			Description: "Highest quality for complex legal analysis",
		},
		{
			Name:        "gemini-1.5-pro",
			URL:         GenerateURL("gemini-1.5-pro"),
			Priority:    2,
			Timeout:     120 * time.Second,
			Description: "High quality with good reliability",
		},
		{
			Name:        "gemini-1.5-flash",
			URL:         GenerateURL("gemini-1.5-flash"),
			Priority:    3,
			Timeout:     90 * time.Second,
			Description: "Fast and cost-effective",
		},
	}
}

// DefaultOrigins are the browser origins accepted by CORS when ALLOWED_ORIGINS is unset
func DefaultOrigins() []string {
	return []string{
		"http://localhost:3000",
		"http://localhost:5500",
		"http://127.0.0.1:5500",
		"*.vercel.app",
		"*.onrender.com",
		"https://vidhi-saarathi-ai.vercel.app",
		"https://vidhi-saarathi-ai1.vercel.app",
		"https://vidhi-saarathi-ai-backend.onrender.com",
	}
}

// GenerateURL builds the generateContent endpoint for a model name
func GenerateURL(model string) string {
	return fmt.Sprintf("%s/%s:generateContent", GeminiBaseURL, model)
}

var keyNames = []string{"Primary Key", "Secondary Key", "Backup Key"}

// New loads .env (when present), the process environment and os.Args
func New() (*Config, error) {
	_ = godotenv.Load()
	return Parse(os.Args[1:], os.Getenv)
}

// Parse builds a Config from command-line args and an environment lookup
func Parse(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:              envInt(getenv, "PORT", 3000),
		LogLevel:          envString(getenv, "LOG_LEVEL", "info"),
		Models:            DefaultModels(),
		MaxRetries:        2,
		BaseDelay:         2 * time.Second,
		MinResponseLength: 50,
		QuotaTimeout:      10 * time.Second,
		ProxyURL:          getenv("GEMINI_PROXY_URL"),
		AuthSecret:        envString(getenv, "AUTH_SECRET", defaultAuthSecret),
		TokenTTL:          30 * 24 * time.Hour,
		SignedURLTTL:      24 * time.Hour,
		SignupCaptcha:     envBool(getenv, "SIGNUP_CAPTCHA"),
		DatabaseURL:       getenv("DATABASE_URL"),
		DataDir:           envString(getenv, "DATA_DIR", "data"),
		UploadDir:         envString(getenv, "UPLOAD_DIR", "uploads"),
		FrontendDir:       envString(getenv, "FRONTEND_DIR", "../frontend"),
		PublicBaseURL:     strings.TrimRight(getenv("PUBLIC_BASE_URL"), "/"),
		AllowedOrigins:    DefaultOrigins(),
		MaxUploadSize:     20 << 20,
		MaxQueryLength:    2000,
	}

	for i, name := range keyNames {
		cfg.Keys = append(cfg.Keys, KeyConfig{
			Name:     name,
			Key:      strings.TrimSpace(getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i+1))),
			Priority: i + 1,
		})
	}

	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	var modelsFile string
	fs := flag.NewFlagSet("vidhi-saarathi", flag.ContinueOnError)
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	fs.BoolVar(&cfg.Version, "version", false, "show version")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "http listen port")
	fs.StringVar(&modelsFile, "models", getenv("MODELS_FILE"), "yaml file overriding models and keys")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Args = fs.Args()

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	if modelsFile != "" {
		if err := cfg.loadModelsFile(modelsFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// modelsFile is the on-disk shape read by the -models flag
type modelsFile struct {
	Models []ModelConfig `yaml:"models"`
	Keys   []KeyConfig   `yaml:"keys"`
}

func (c *Config) loadModelsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read models file: %w", err)
	}
	return c.applyModels(data)
}

func (c *Config) applyModels(data []byte) error {
	var mf modelsFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("parse models file: %w", err)
	}

	if len(mf.Models) > 0 {
		for i := range mf.Models {
			m := &mf.Models[i]
			if m.Name == "" {
				return fmt.Errorf("models file: model #%d has no name", i+1)
			}
			if m.URL == "" {
				m.URL = GenerateURL(m.Name)
			}
			if m.Timeout <= 0 {
				m.Timeout = 120 * time.Second
			}
		}
		c.Models = mf.Models
	}

	if len(mf.Keys) > 0 {
		for i := range mf.Keys {
			if mf.Keys[i].Name == "" {
				mf.Keys[i].Name = fmt.Sprintf("Key %d", i+1)
			}
		}
		c.Keys = mf.Keys
	}
	return nil
}

// UsingDefaultSecret reports whether AUTH_SECRET was left unset
func (c *Config) UsingDefaultSecret() bool {
	return c.AuthSecret == defaultAuthSecret
}

func envString(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(getenv func(string) string, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envBool(getenv func(string) string, key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(getenv(key)))
	return v
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

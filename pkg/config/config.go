package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultAddr       = ":3000"
	DefaultAPIBaseURL = "http://localhost:8000"

	// Groq exposes an OpenAI-compatible completions API.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-8b-instant"

	DefaultHTTPTimeout = 30 * time.Second
)

// Config carries everything helpdeskd reads from the environment.
type Config struct {
	Addr       string
	APIBaseURL string // external ticket/knowledge-base backend

	LLMProvider string // "openai" (Groq-compatible) or "anthropic"
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string

	HTTPTimeout time.Duration

	JWTSecret         []byte
	AdminEmail        string
	AdminPasswordHash string // bcrypt

	RulesPath string // optional YAML self-service rule pack
}

// Load reads configuration from the environment and applies defaults.
// A missing completion API key is not an error here: the chat pipeline
// surfaces it as a structured configuration error per request.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:              getenv("ADDR", DefaultAddr),
		APIBaseURL:        strings.TrimRight(getenv("API_BASE_URL", DefaultAPIBaseURL), "/"),
		LLMBaseURL:        os.Getenv("LLM_BASE_URL"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		HTTPTimeout:       DefaultHTTPTimeout,
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		RulesPath:         os.Getenv("SELF_SERVICE_RULES"),
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	if err := cfg.resolveProvider(); err != nil {
		return nil, err
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = []byte(secret)
	} else {
		// Ephemeral secret: sessions do not survive a restart.
		cfg.JWTSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.JWTSecret); err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveProvider picks the completion provider. An explicit LLM_PROVIDER
// wins; otherwise whichever API key is present decides, preferring Groq.
func (c *Config) resolveProvider() error {
	groqKey := os.Getenv("GROQ_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")

	useGroq := func() {
		c.LLMProvider = "openai"
		c.LLMAPIKey = groqKey
		if c.LLMBaseURL == "" {
			c.LLMBaseURL = DefaultGroqBaseURL
		}
		if c.LLMModel == "" {
			c.LLMModel = DefaultGroqModel
		}
	}

	switch provider := os.Getenv("LLM_PROVIDER"); provider {
	case "":
		switch {
		case groqKey != "":
			useGroq()
		case openaiKey != "":
			c.LLMProvider = "openai"
			c.LLMAPIKey = openaiKey
		case anthropicKey != "":
			c.LLMProvider = "anthropic"
			c.LLMAPIKey = anthropicKey
		}
	case "openai":
		c.LLMProvider = "openai"
		if openaiKey != "" {
			c.LLMAPIKey = openaiKey
		} else if groqKey != "" {
			useGroq()
		}
	case "anthropic":
		c.LLMProvider = "anthropic"
		c.LLMAPIKey = anthropicKey
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (must be 'openai' or 'anthropic')", provider)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

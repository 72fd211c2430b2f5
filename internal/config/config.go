// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	AppURL      string // public base URL used to build OAuth callback addresses
	DBPath      string
	LogLevel    string
	LogFile     string
	CORSOrigins []string
	HTTPTimeout time.Duration
	MCPEnabled  bool
	MCPToken    string // bearer token required on /mcp when set

	AI       AIConfig
	Notion   NotionConfig
	GitHub   GitHubConfig
	LinkedIn LinkedInConfig
}

// AIConfig configures the advice models.
type AIConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	EnableFallback bool
}

// NotionConfig configures the note-service integration.
type NotionConfig struct {
	ClientID       string
	ClientSecret   string
	InternalSecret string // pre-provisioned token backfilled into the profile
	APIURL         string
	AuthURL        string
	TokenURL       string
}

// GitHubConfig configures the code-host integration.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	AuthURL      string
	TokenURL     string
}

// LinkedInConfig configures the simulated professional-network connector.
type LinkedInConfig struct {
	ClientID string
	AuthURL  string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("app_url", "")
	v.SetDefault("db_path", "./data/career_assistant.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("mcp_enabled", true)
	v.SetDefault("mcp_token", "")

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-3-flash-preview")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4.1-mini")
	v.SetDefault("openai_enable_fallback", true)

	v.SetDefault("notion_client_id", "")
	v.SetDefault("notion_client_secret", "")
	v.SetDefault("notion_internal_secret", "")
	v.SetDefault("notion_api_url", "https://api.notion.com")
	v.SetDefault("notion_auth_url", "https://api.notion.com/v1/oauth/authorize")
	v.SetDefault("notion_token_url", "https://api.notion.com/v1/oauth/token")

	v.SetDefault("github_client_id", "")
	v.SetDefault("github_client_secret", "")
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("github_auth_url", "https://github.com/login/oauth/authorize")
	v.SetDefault("github_token_url", "https://github.com/login/oauth/access_token")

	v.SetDefault("linkedin_client_id", "")
	v.SetDefault("linkedin_auth_url", "https://www.linkedin.com/oauth/v2/authorization")
}

// Load reads configuration from environment variables and, when configFile
// is set, from that file. Environment variables win.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        v.GetString("port"),
		AppURL:      strings.TrimRight(strings.TrimSpace(v.GetString("app_url")), "/"),
		DBPath:      v.GetString("db_path"),
		LogLevel:    v.GetString("log_level"),
		LogFile:     v.GetString("log_file"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		HTTPTimeout: v.GetDuration("http_timeout"),
		MCPEnabled:  v.GetBool("mcp_enabled"),
		MCPToken:    strings.TrimSpace(v.GetString("mcp_token")),
		AI: AIConfig{
			GeminiAPIKey:   v.GetString("gemini_api_key"),
			GeminiModel:    v.GetString("gemini_model"),
			OpenAIAPIKey:   v.GetString("openai_api_key"),
			OpenAIModel:    v.GetString("openai_model"),
			EnableFallback: v.GetBool("openai_enable_fallback"),
		},
		Notion: NotionConfig{
			ClientID:       strings.TrimSpace(v.GetString("notion_client_id")),
			ClientSecret:   strings.TrimSpace(v.GetString("notion_client_secret")),
			InternalSecret: strings.TrimSpace(v.GetString("notion_internal_secret")),
			APIURL:         strings.TrimRight(v.GetString("notion_api_url"), "/"),
			AuthURL:        v.GetString("notion_auth_url"),
			TokenURL:       v.GetString("notion_token_url"),
		},
		GitHub: GitHubConfig{
			ClientID:     strings.TrimSpace(v.GetString("github_client_id")),
			ClientSecret: strings.TrimSpace(v.GetString("github_client_secret")),
			APIURL:       strings.TrimRight(v.GetString("github_api_url"), "/"),
			AuthURL:      v.GetString("github_auth_url"),
			TokenURL:     v.GetString("github_token_url"),
		},
		LinkedIn: LinkedInConfig{
			ClientID: strings.TrimSpace(v.GetString("linkedin_client_id")),
			AuthURL:  v.GetString("linkedin_auth_url"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
// OAuth credentials are checked when a connector is used.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if c.AppURL != "" && !c.AppURLValid() {
		return fmt.Errorf("APP_URL must be an absolute http(s) URL, got %q", c.AppURL)
	}
	return nil
}

// AppURLValid reports whether AppURL is an absolute http(s) URL. OAuth
// connectors refuse to build authorization URLs otherwise.
func (c *Config) AppURLValid() bool {
	u, err := url.Parse(c.AppURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppURL == "" ||
		strings.Contains(c.AppURL, "localhost") ||
		strings.Contains(c.AppURL, "127.0.0.1")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/joho/godotenv"
)

// Component names a request handler with its own set of mandatory settings.
type Component string

const (
	ComponentGenerate  Component = "generate"
	ComponentAnalyze   Component = "analyze"
	ComponentBroadcast Component = "broadcast"
	ComponentNotify    Component = "notify"
	ComponentWebhook   Component = "webhook"
	ComponentXPost     Component = "xpost"
	ComponentPages     Component = "pages"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Redis configuration (optional duplicate-guard cache)
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// Workflow service
	DifyAPIKey           string `json:"-"`
	DifyAPIEndpoint      string `json:"dify_api_endpoint"`
	DifyImageAPIKey      string `json:"-"`
	DifyImageAPIEndpoint string `json:"dify_image_api_endpoint"`
	DifyChatAPIKey       string `json:"-"`
	DifyChatAPIEndpoint  string `json:"dify_chat_api_endpoint"`
	WorkflowUser         string `json:"workflow_user"`
	IntroURL             string `json:"intro_url"`

	// Object storage
	S3Bucket          string `json:"s3_bucket"`
	S3Region          string `json:"s3_region"`
	S3Endpoint        string `json:"s3_endpoint"`
	S3AccessKeyID     string `json:"-"`
	S3SecretAccessKey string `json:"-"`

	// Content store
	SupabaseURL string `json:"supabase_url"`
	SupabaseKey string `json:"-"`

	// Source control
	GitHubToken  string `json:"-"`
	GitHubRepo   string `json:"github_repo"`
	GitHubBranch string `json:"github_branch"`
	GitHubAPIURL string `json:"github_api_url"`

	// Messaging
	LineChannelAccessToken   string `json:"-"`
	LineChannelSecret        string `json:"-"`
	LineAPIURL               string `json:"line_api_url"`
	TwitterAPIKey            string `json:"-"`
	TwitterAPISecret         string `json:"-"`
	TwitterAccessToken       string `json:"-"`
	TwitterAccessTokenSecret string `json:"-"`
	XAPIURL                  string `json:"x_api_url"`

	// Site
	SiteBaseURL    string   `json:"site_base_url"`
	AllowedDomains []string `json:"allowed_domains"`

	// Scheduler
	NewsPageSchedule string `json:"news_page_schedule"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"-"`
}

// Load loads configuration from a .env file, if any, and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	difyKey := getEnv("DIFY_API_KEY", "")
	difyEndpoint := getEnv("DIFY_API_ENDPOINT", "")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 90*time.Second),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "sitehooks:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 720*time.Hour), // 30 days

		DifyAPIKey:           difyKey,
		DifyAPIEndpoint:      difyEndpoint,
		DifyImageAPIKey:      getEnv("DIFY_IMAGE_API_KEY", difyKey),
		DifyImageAPIEndpoint: getEnv("DIFY_IMAGE_API_ENDPOINT", difyEndpoint),
		DifyChatAPIKey:       getEnv("DIFY_CHAT_API_KEY", difyKey),
		DifyChatAPIEndpoint:  getEnv("DIFY_CHAT_API_ENDPOINT", difyEndpoint),
		WorkflowUser:         getEnv("WORKFLOW_USER", "asahigaoka-cms"),
		IntroURL:             getEnv("INTRO_URL", "https://asahigaoka-nerima.tokyo/town.html"),

		S3Bucket:          getEnv("S3_BUCKET", "asahigaoka-nerima-tokyo"),
		S3Region:          getEnv("AWS_REGION", "ap-northeast-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),

		SupabaseURL: strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey: getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),

		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:   getEnv("GITHUB_REPO", "asahigaoka/asahigaoka"),
		GitHubBranch: getEnv("GITHUB_BRANCH", "main"),
		GitHubAPIURL: strings.TrimRight(getEnv("GITHUB_API_URL", "https://api.github.com"), "/"),

		LineChannelAccessToken:   getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret:        getEnv("LINE_CHANNEL_SECRET", ""),
		LineAPIURL:               strings.TrimRight(getEnv("LINE_API_URL", "https://api.line.me"), "/"),
		TwitterAPIKey:            getEnv("TWITTER_API_KEY", ""),
		TwitterAPISecret:         getEnv("TWITTER_API_SECRET", ""),
		TwitterAccessToken:       getEnv("TWITTER_ACCESS_TOKEN", ""),
		TwitterAccessTokenSecret: getEnv("TWITTER_ACCESS_TOKEN_SECRET", ""),
		XAPIURL:                  getEnv("X_API_URL", "https://api.twitter.com/2/tweets"),

		SiteBaseURL:    strings.TrimRight(getEnv("SITE_BASE_URL", "https://asahigaoka-nerima.tokyo"), "/"),
		AllowedDomains: getEnvAsList("ALLOWED_DOMAINS", []string{"asahigaoka-nerima.tokyo"}),

		NewsPageSchedule: getEnv("NEWS_PAGE_SCHEDULE", "5 0 * * *"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

type setting struct {
	env   string
	value string
}

func (c *Config) requirements(component Component) []setting {
	supabase := []setting{
		{"SUPABASE_URL", c.SupabaseURL},
		{"SUPABASE_KEY", c.SupabaseKey},
	}

	switch component {
	case ComponentGenerate:
		return []setting{
			{"DIFY_API_KEY", c.DifyAPIKey},
			{"DIFY_API_ENDPOINT", c.DifyAPIEndpoint},
		}
	case ComponentAnalyze:
		return []setting{
			{"DIFY_IMAGE_API_KEY", c.DifyImageAPIKey},
			{"DIFY_IMAGE_API_ENDPOINT", c.DifyImageAPIEndpoint},
			{"S3_BUCKET", c.S3Bucket},
		}
	case ComponentBroadcast:
		return append([]setting{{"LINE_CHANNEL_ACCESS_TOKEN", c.LineChannelAccessToken}}, supabase...)
	case ComponentNotify:
		return []setting{{"LINE_CHANNEL_ACCESS_TOKEN", c.LineChannelAccessToken}}
	case ComponentWebhook:
		return append([]setting{
			{"LINE_CHANNEL_ACCESS_TOKEN", c.LineChannelAccessToken},
			{"LINE_CHANNEL_SECRET", c.LineChannelSecret},
			{"DIFY_CHAT_API_KEY", c.DifyChatAPIKey},
			{"DIFY_CHAT_API_ENDPOINT", c.DifyChatAPIEndpoint},
		}, supabase...)
	case ComponentXPost:
		return []setting{
			{"TWITTER_API_KEY", c.TwitterAPIKey},
			{"TWITTER_API_SECRET", c.TwitterAPISecret},
			{"TWITTER_ACCESS_TOKEN", c.TwitterAccessToken},
			{"TWITTER_ACCESS_TOKEN_SECRET", c.TwitterAccessTokenSecret},
		}
	case ComponentPages:
		return append(supabase, setting{"GITHUB_TOKEN", c.GitHubToken})
	}
	return nil
}

// Require checks every mandatory setting of a component and reports all
// missing ones at once.
func (c *Config) Require(component Component) error {
	var missing []string
	for _, s := range c.requirements(component) {
		if strings.TrimSpace(s.value) == "" {
			missing = append(missing, s.env)
		}
	}
	if len(missing) > 0 {
		return apperr.Configuration("Missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks settings that must be sane for the process to start.
func (c *Config) Validate() error {
	if len(c.AllowedDomains) == 0 {
		return apperr.Configuration("ALLOWED_DOMAINS must list at least one domain")
	}
	if c.SiteBaseURL == "" {
		return apperr.Configuration("SITE_BASE_URL must not be empty")
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		// plain integers are read as seconds
		if secs, convErr := strconv.Atoi(valueStr); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsList(name string, defaultVal []string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// R2 holds the Cloudflare R2 (S3-compatible) storage settings. Presigned
// URLs are deliberately short-lived.
type R2 struct {
	AccessKeyID          string `yaml:"accessKeyId"`
	SecretAccessKey      string `yaml:"secretAccessKey"`
	Bucket               string `yaml:"bucket"`
	Region               string `yaml:"region"`
	Endpoint             string `yaml:"endpoint"`
	PublicURL            string `yaml:"publicUrl"`
	PresignExpirySeconds int    `yaml:"presignExpirySeconds"`
	RetryMaxAttempts     int    `yaml:"retryMaxAttempts"`
	RetryBaseSeconds     int    `yaml:"retryBaseSeconds"`
	RetryMaxSeconds      int    `yaml:"retryMaxSeconds"`
}

func (r R2) Enabled() bool {
	return r.AccessKeyID != "" && r.SecretAccessKey != "" && r.Bucket != ""
}

// RateLimitBucket configures a token bucket; zero values disable it.
type RateLimitBucket struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
	BurstSize         int `yaml:"burstSize"`
}

type Tracing struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	OTLPInsecure bool    `yaml:"otlpInsecure"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

type Config struct {
	Port      int    `yaml:"port"`
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	DatabaseURL   string `yaml:"databaseUrl"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	AuthProvider string `yaml:"authProvider"`
	// AuthConfig is provider-specific JSON, kept as text so it can live
	// inside the YAML file.
	AuthConfig          string `yaml:"authConfig"`
	JwksURL             string `yaml:"jwksUrl"`
	JwksCacheTTLSeconds int    `yaml:"jwksCacheTtlSeconds"`

	R2 R2 `yaml:"r2"`

	PageDefaultLimit int `yaml:"pageDefaultLimit"`
	PageMaxLimit     int `yaml:"pageMaxLimit"`

	RateLimitWrite RateLimitBucket `yaml:"rateLimitWrite"`

	Tracing Tracing `yaml:"tracing"`
}

// LoadConfig reads the YAML config file, applies environment overrides and
// fills defaults. An empty path loads defaults and environment only.
func LoadConfig(filePath string) (*Config, error) {
	var c Config
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("JWKS_URI"); v != "" {
		c.JwksURL = v
	}
	if v := os.Getenv("JWKS_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.JwksCacheTTLSeconds = n
		}
	}
	if v := os.Getenv("R2_ACCESS_KEY_ID"); v != "" {
		c.R2.AccessKeyID = v
	}
	if v := os.Getenv("R2_SECRET_ACCESS_KEY"); v != "" {
		c.R2.SecretAccessKey = v
	}
	if v := os.Getenv("R2_BUCKET_NAME"); v != "" {
		c.R2.Bucket = v
	}
	if v := os.Getenv("R2_REGION"); v != "" {
		c.R2.Region = v
	}
	if v := os.Getenv("R2_ENDPOINT_URL"); v != "" {
		c.R2.Endpoint = v
	}
	if v := os.Getenv("R2_PUBLIC_URL"); v != "" {
		c.R2.PublicURL = v
	}
	if v := os.Getenv("R2_PRESIGNED_URL_EXPIRATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.R2.PresignExpirySeconds = n
		}
	}

	applyDefaults(&c)
	return &c, nil
}

// LoadConfigOptional behaves like LoadConfig but tolerates an empty,
// whitespace or missing path, falling back to defaults plus environment.
func LoadConfigOptional(filePath string) (*Config, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath != "" {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			filePath = ""
		}
	}
	return LoadConfig(filePath)
}

func applyDefaults(c *Config) {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.AuthProvider == "" {
		c.AuthProvider = "jwks"
	}
	if c.JwksURL == "" {
		c.JwksURL = "http://localhost:8080/realms/master/protocol/openid-connect/certs"
	}
	if c.JwksCacheTTLSeconds <= 0 {
		c.JwksCacheTTLSeconds = 3600
	}
	if c.R2.Region == "" {
		c.R2.Region = "auto"
	}
	if c.R2.Endpoint == "" {
		c.R2.Endpoint = "https://r2.cloudflarestorage.com"
	}
	if c.R2.PresignExpirySeconds <= 0 {
		c.R2.PresignExpirySeconds = 20
	}
	if c.R2.RetryMaxAttempts <= 0 {
		c.R2.RetryMaxAttempts = 3
	}
	if c.R2.RetryBaseSeconds <= 0 {
		c.R2.RetryBaseSeconds = 2
	}
	if c.R2.RetryMaxSeconds <= 0 {
		c.R2.RetryMaxSeconds = 10
	}
	if c.PageDefaultLimit <= 0 {
		c.PageDefaultLimit = 50
	}
	if c.PageMaxLimit <= 0 {
		c.PageMaxLimit = 100
	}
}

func (c *Config) Validate() error {
	var errs []string
	env := strings.ToLower(strings.TrimSpace(c.Env))
	dev := env == "dev"

	if c.AuthProvider == "jwks" {
		if c.JwksURL == "" {
			errs = append(errs, "jwksUrl is required")
		} else {
			u, err := url.Parse(c.JwksURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				errs = append(errs, "jwksUrl must be a valid http(s) URL")
			}
		}
	}
	if c.DatabaseURL == "" && !dev {
		errs = append(errs, "databaseUrl is required in non-dev")
	}
	if !c.R2.Enabled() && !dev {
		errs = append(errs, "r2 credentials and bucket are required in non-dev")
	}
	if c.R2.Enabled() && c.R2.PublicURL == "" {
		errs = append(errs, "r2 publicUrl is required when storage is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// AuthProviderConfig builds the provider selection for the auth registry.
// When authConfig is not set explicitly, the jwks provider is configured from
// the top-level jwks settings.
func (c *Config) AuthProviderConfig() (string, json.RawMessage, error) {
	if strings.TrimSpace(c.AuthConfig) != "" {
		return c.AuthProvider, json.RawMessage(c.AuthConfig), nil
	}
	if c.AuthProvider != "jwks" {
		return "", nil, fmt.Errorf("auth provider %q requires authConfig", c.AuthProvider)
	}
	raw, err := json.Marshal(map[string]any{
		"jwksUrl":         c.JwksURL,
		"cacheTtlSeconds": c.JwksCacheTTLSeconds,
	})
	if err != nil {
		return "", nil, err
	}
	return "jwks", raw, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// insecureJWTSecret is the built-in default; it is only accepted in development.
const insecureJWTSecret = "supersecretkey"

type Config struct {
	Env            string        `yaml:"env"`
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`

	Log         LogConfig         `yaml:"log"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	OTP         OTPConfig         `yaml:"otp"`
	Twilio      TwilioConfig      `yaml:"twilio"`
	OAuth       OAuthConfig       `yaml:"oauth"`
	CORS        CORSConfig        `yaml:"cors"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Component string `yaml:"component"`
	Source    bool   `yaml:"source"`
}

// StorageConfig locates the object store root on disk and the base URL the
// objects are publicly served under.
type StorageConfig struct {
	Root           string `yaml:"root"`
	PublicBaseURL  string `yaml:"public_base_url"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OTPConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	Cooldown time.Duration `yaml:"cooldown"`
}

// TwilioConfig enables SMS delivery. With an empty AccountSID codes are only logged.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
}

type OAuthConfig struct {
	// CallbackBaseURL is the externally visible API origin used to build
	// provider redirect URLs.
	CallbackBaseURL string              `yaml:"callback_base_url"`
	Google          OAuthProviderConfig `yaml:"google"`
	Facebook        OAuthProviderConfig `yaml:"facebook"`
}

type OAuthProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

func (p OAuthProviderConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DiagnosticsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	cfg := &Config{
		Env:            getEnv("HM_ENV", "production"),
		Addr:           getEnv("HM_ADDR", ":8080"),
		JWTSecret:      getEnv("HM_JWT_SECRET", insecureJWTSecret),
		APITimeout:     apiTimeout,
		DatabasePath:   getEnv("HM_DATABASE_PATH", "helpermatch.db"),
		TokenDuration:  tokenDuration,
		MigrateOnStart: getEnvBool("HM_MIGRATE_ON_START", true),
		Log: LogConfig{
			Level:  getEnv("HM_LOG_LEVEL", "info"),
			Format: getEnv("HM_LOG_FORMAT", "json"),
		},
		Storage: StorageConfig{
			Root:          getEnv("HM_STORAGE_ROOT", "storage"),
			PublicBaseURL: getEnv("HM_STORAGE_PUBLIC_URL", "http://localhost:8080/storage"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("HM_REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("HM_REDIS_PASSWORD"),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("HM_TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("HM_TWILIO_AUTH_TOKEN"),
			From:       os.Getenv("HM_TWILIO_FROM"),
		},
		OAuth: OAuthConfig{
			CallbackBaseURL: getEnv("HM_OAUTH_CALLBACK_BASE_URL", "http://localhost:8080"),
			Google: OAuthProviderConfig{
				ClientID:     os.Getenv("HM_GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("HM_GOOGLE_CLIENT_SECRET"),
			},
			Facebook: OAuthProviderConfig{
				ClientID:     os.Getenv("HM_FACEBOOK_CLIENT_ID"),
				ClientSecret: os.Getenv("HM_FACEBOOK_CLIENT_SECRET"),
			},
		},
		Diagnostics: DiagnosticsConfig{Enabled: getEnvBool("HM_DIAGNOSTICS", false)},
	}
	if origins := os.Getenv("HM_CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode, either
// from the config file or the HM_ENV variable.
func (c *Config) IsDevelopment() bool {
	env := c.Env
	if v := os.Getenv("HM_ENV"); v != "" {
		env = v
	}
	return strings.EqualFold(env, "development") || strings.EqualFold(env, "dev")
}

// Validate checks required settings and fills defaults for optional ones.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	} else if c.JWTSecret == insecureJWTSecret && !c.IsDevelopment() {
		errs = append(errs, errors.New("jwt_secret uses the insecure default outside development"))
	}
	if c.Twilio.AccountSID != "" && (c.Twilio.AuthToken == "" || c.Twilio.From == "") {
		errs = append(errs, errors.New("twilio.auth_token and twilio.from are required with twilio.account_sid"))
	}
	if c.Storage.Root == "" {
		errs = append(errs, errors.New("storage.root is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Storage.MaxUploadBytes <= 0 {
		c.Storage.MaxUploadBytes = 50 << 20
	}
	c.Storage.PublicBaseURL = strings.TrimRight(c.Storage.PublicBaseURL, "/")
	if c.OTP.TTL <= 0 {
		c.OTP.TTL = 5 * time.Minute
	}
	if c.OTP.Cooldown <= 0 {
		c.OTP.Cooldown = time.Minute
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

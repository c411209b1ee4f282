package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "CARBONTRACK"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultCompanyName     = "RMX Joss"
	defaultDatabaseDriver  = "sqlite"
	defaultDatabasePath    = "carbontrack.db"
	defaultDocumentBackend = "local"
	defaultDocumentBaseDir = "CarbonData"
	defaultLogLevel        = "info"
	defaultTokenTTLMinutes = 480
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress     string
	CompanyName     string
	SigningSecret   string
	TokenTTL        time.Duration
	LogLevel        string
	DatabaseDriver  string
	DatabasePath    string
	DatabaseDSN     string
	DocumentBackend string
	DocumentBaseDir string
	S3Region        string
	S3Bucket        string
	S3KeyPrefix     string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	Units           []string
	Factors         FactorTable
	AdminEmail      string
	AdminPassword   string
	Managers        []DirectoryUser
	Employees       []DirectoryUser
}

// DirectoryUser is one configured login.
type DirectoryUser struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("company.name", defaultCompanyName)
	configViper.SetDefault("database.driver", defaultDatabaseDriver)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("documents.backend", defaultDocumentBackend)
	configViper.SetDefault("documents.base_dir", defaultDocumentBaseDir)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("token.ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("units", defaultUnits)
	configViper.SetDefault("auth.admin_email", "admin@gmail.com")
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:     configViper.GetString("http.address"),
		CompanyName:     configViper.GetString("company.name"),
		SigningSecret:   configViper.GetString("auth.signing_secret"),
		TokenTTL:        time.Duration(configViper.GetInt("token.ttl_minutes")) * time.Minute,
		LogLevel:        configViper.GetString("log.level"),
		DatabaseDriver:  strings.ToLower(configViper.GetString("database.driver")),
		DatabasePath:    configViper.GetString("database.path"),
		DatabaseDSN:     configViper.GetString("database.dsn"),
		DocumentBackend: strings.ToLower(configViper.GetString("documents.backend")),
		DocumentBaseDir: configViper.GetString("documents.base_dir"),
		S3Region:        configViper.GetString("documents.s3.region"),
		S3Bucket:        configViper.GetString("documents.s3.bucket"),
		S3KeyPrefix:     configViper.GetString("documents.s3.key_prefix"),
		S3AccessKey:     configViper.GetString("documents.s3.access_key"),
		S3SecretKey:     configViper.GetString("documents.s3.secret_key"),
		S3Endpoint:      configViper.GetString("documents.s3.endpoint"),
		Units:           configViper.GetStringSlice("units"),
		AdminEmail:      configViper.GetString("auth.admin_email"),
		AdminPassword:   configViper.GetString("auth.admin_password"),
	}

	factors := DefaultFactors()
	if configViper.IsSet("factors") {
		var raw map[string]map[string]float64
		if err := configViper.UnmarshalKey("factors", &raw); err != nil {
			return AppConfig{}, fmt.Errorf("factors: %w", err)
		}
		categories := defaultCategoryNames
		if configViper.IsSet("categories") {
			var rawCategories map[string]string
			if err := configViper.UnmarshalKey("categories", &rawCategories); err != nil {
				return AppConfig{}, fmt.Errorf("categories: %w", err)
			}
			categories = rawCategories
		}
		factors = NewFactorTable(raw, categories)
	}
	cfg.Factors = factors

	if err := configViper.UnmarshalKey("auth.managers", &cfg.Managers); err != nil {
		return AppConfig{}, fmt.Errorf("auth.managers: %w", err)
	}
	if err := configViper.UnmarshalKey("auth.employees", &cfg.Employees); err != nil {
		return AppConfig{}, fmt.Errorf("auth.employees: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	switch c.DatabaseDriver {
	case "sqlite":
		if strings.TrimSpace(c.DatabasePath) == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	switch c.DocumentBackend {
	case "local":
		if strings.TrimSpace(c.DocumentBaseDir) == "" {
			return fmt.Errorf("documents.base_dir is required for the local backend")
		}
	case "s3":
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("documents.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("documents.backend must be local or s3, got %q", c.DocumentBackend)
	}
	if len(c.Units) == 0 {
		return fmt.Errorf("at least one unit must be configured")
	}
	return nil
}

// HasUnit reports whether the unit identifier is configured.
func (c AppConfig) HasUnit(unit string) bool {
	for _, candidate := range c.Units {
		if candidate == unit {
			return true
		}
	}
	return false
}

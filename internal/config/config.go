// Package config carga la configuración del servicio: YAML + .env + overrides por entorno.
//
// Precedencia (de menor a mayor): defaults, config.yaml, variables I18NMAIL_*.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix es el prefijo de todas las variables de entorno leídas.
const EnvPrefix = "I18NMAIL_"

type Config struct {
	App struct {
		// dev | staging | prod | test
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Storage struct {
		// fs | postgres | redis | memory
		Driver string `yaml:"driver"`
		FS     struct {
			Root string `yaml:"root"`
		} `yaml:"fs"`
		Postgres struct {
			DSN          string `yaml:"dsn"`
			MaxOpenConns int    `yaml:"max_open_conns"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
			Migrate      bool   `yaml:"migrate"`
		} `yaml:"postgres"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Templates struct {
		DefaultLocale       string `yaml:"default_locale"`
		RootPath            string `yaml:"root_path"`
		TemplateNamePattern string `yaml:"template_name_pattern"`
		InvalidCharsPattern string `yaml:"invalid_chars_pattern"`
		// DefaultsFile reemplaza el set de templates por defecto embebido.
		DefaultsFile string `yaml:"defaults_file"`
	} `yaml:"templates"`

	Admin struct {
		// Secret HMAC para validar los bearer tokens del admin API. Vacío = API sin auth (solo dev).
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"admin"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		// auto | starttls | ssl | none
		TLSMode string `yaml:"tls_mode"`
	} `yaml:"smtp"`
}

// Default retorna una configuración con todos los defaults aplicados.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadEnvFiles carga los .env indicados si existen. Los archivos faltantes se ignoran.
func LoadEnvFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// Load lee el YAML en path (si path es vacío, solo defaults + env),
// aplica overrides de entorno y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnvOverrides()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// sane defaults
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "fs"
	}
	if c.Storage.FS.Root == "" {
		c.Storage.FS.Root = "./data"
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = "localhost:6379"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * time.Second
	}
	if c.Templates.DefaultLocale == "" {
		c.Templates.DefaultLocale = "en_US"
	}
	if c.Templates.RootPath == "" {
		c.Templates.RootPath = "/identity/email"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.TLSMode == "" {
		c.SMTP.TLSMode = "auto"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno I18NMAIL_*.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvDur("SERVER_READ_TIMEOUT"); ok {
		c.Server.ReadTimeout = v
	}
	if v, ok := getEnvDur("SERVER_WRITE_TIMEOUT"); ok {
		c.Server.WriteTimeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_FS_ROOT"); ok {
		c.Storage.FS.Root = v
	}
	if v, ok := getEnvStr("STORAGE_POSTGRES_DSN"); ok {
		c.Storage.Postgres.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("STORAGE_POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvBool("STORAGE_POSTGRES_MIGRATE"); ok {
		c.Storage.Postgres.Migrate = v
	}
	if v, ok := getEnvStr("STORAGE_REDIS_ADDR"); ok {
		c.Storage.Redis.Addr = v
	}
	if v, ok := getEnvStr("STORAGE_REDIS_PASSWORD"); ok {
		c.Storage.Redis.Password = v
	}
	if v, ok := getEnvInt("STORAGE_REDIS_DB"); ok {
		c.Storage.Redis.DB = v
	}
	if v, ok := getEnvStr("STORAGE_REDIS_PREFIX"); ok {
		c.Storage.Redis.Prefix = v
	}

	// CACHE
	if v, ok := getEnvBool("CACHE_ENABLED"); ok {
		c.Cache.Enabled = v
	}
	if v, ok := getEnvDur("CACHE_TTL"); ok {
		c.Cache.TTL = v
	}

	// TEMPLATES
	if v, ok := getEnvStr("TEMPLATES_DEFAULT_LOCALE"); ok {
		c.Templates.DefaultLocale = v
	}
	if v, ok := getEnvStr("TEMPLATES_ROOT_PATH"); ok {
		c.Templates.RootPath = v
	}
	if v, ok := getEnvStr("TEMPLATES_NAME_PATTERN"); ok {
		c.Templates.TemplateNamePattern = v
	}
	if v, ok := getEnvStr("TEMPLATES_INVALID_CHARS_PATTERN"); ok {
		c.Templates.InvalidCharsPattern = v
	}
	if v, ok := getEnvStr("TEMPLATES_DEFAULTS_FILE"); ok {
		c.Templates.DefaultsFile = v
	}

	// ADMIN
	if v, ok := getEnvStr("ADMIN_JWT_SECRET"); ok {
		c.Admin.JWTSecret = v
	}
	if v, ok := getEnvStr("ADMIN_ISSUER"); ok {
		c.Admin.Issuer = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS_MODE"); ok {
		c.SMTP.TLSMode = strings.ToLower(v)
	}
}

var (
	validDrivers  = map[string]bool{"fs": true, "postgres": true, "redis": true, "memory": true}
	validTLSModes = map[string]bool{"auto": true, "starttls": true, "ssl": true, "none": true}
)

// Validate rechaza drivers desconocidos, patrones que no compilan y
// combinaciones incompletas (postgres sin DSN).
func (c *Config) Validate() error {
	var errs []error
	if !validDrivers[c.Storage.Driver] {
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
		errs = append(errs, errors.New("storage.postgres.dsn: required for postgres driver"))
	}
	if p := c.Templates.TemplateNamePattern; p != "" {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("templates.template_name_pattern: %w", err))
		}
	}
	if p := c.Templates.InvalidCharsPattern; p != "" {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("templates.invalid_chars_pattern: %w", err))
		}
	}
	if c.SMTP.TLSMode != "" && !validTLSModes[c.SMTP.TLSMode] {
		errs = append(errs, fmt.Errorf("smtp.tls_mode: unknown mode %q", c.SMTP.TLSMode))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl: must not be negative"))
	}
	return errors.Join(errs...)
}

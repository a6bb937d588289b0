// Package config loads wordiz settings from defaults, an optional YAML
// file, a .env file and WORDIZ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/wordiz/internal/speech"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WORDIZ"

// Config holds all application settings.
type Config struct {
	API    API    `mapstructure:"api"`
	Listen Listen `mapstructure:"listen"`
	Speech Speech `mapstructure:"speech"`
	Log    Log    `mapstructure:"log"`
	DB     DB     `mapstructure:"db"`
}

// API configures the word-store client.
type API struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SessionCookie string        `mapstructure:"session_cookie"`
}

// Listen configures playback pacing.
type Listen struct {
	Rate  int           `mapstructure:"rate"`  // words per minute
	Pause time.Duration `mapstructure:"pause"` // silence between words
}

// Speech selects the synthesis engine.
type Speech struct {
	Engine    string `mapstructure:"engine"`
	RemoteURL string `mapstructure:"remote_url"` // defaults to API.BaseURL
}

// Log configures the file logger.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DB locates the SQLite database. Empty means the default data path.
type DB struct {
	Path string `mapstructure:"path"`
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit YAML file. When set it must exist.
	ConfigFile string

	// EnvFile is a dotenv file. Missing files are ignored.
	EnvFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.session_cookie", "")
	v.SetDefault("listen.rate", speech.DefaultRate)
	v.SetDefault("listen.pause", "800ms")
	v.SetDefault("speech.engine", speech.EngineAuto)
	v.SetDefault("speech.remote_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("db.path", "")
}

// Default returns the built-in settings.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	cfg.normalize()
	return &cfg
}

// Load builds the configuration. Priority, highest first: WORDIZ_*
// environment (including values from the .env file), the YAML file,
// built-in defaults. Command-line flags are applied by the caller.
//
// Environment names are the key path upper-cased with dots replaced by
// underscores under the WORDIZ prefix, for example WORDIZ_DB_PATH.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	// Every leaf key is bound on its own (api.base_url reads
	// WORDIZ_API_BASE_URL). Section names such as WORDIZ_API are never
	// looked up, so they cannot shadow a whole section.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.Speech.Engine = strings.ToLower(strings.TrimSpace(c.Speech.Engine))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Speech.RemoteURL == "" {
		c.Speech.RemoteURL = c.API.BaseURL
	}
}

// SetBaseURL overrides the API base URL. A speech remote URL that only
// followed the old base URL follows the new one.
func (c *Config) SetBaseURL(raw string) {
	old := c.API.BaseURL
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(raw), "/")
	if c.Speech.RemoteURL == old {
		c.Speech.RemoteURL = c.API.BaseURL
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validateURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Listen.Rate <= 0 {
		return fmt.Errorf("listen.rate must be positive, got %d", c.Listen.Rate)
	}
	if c.Listen.Pause < 0 {
		return fmt.Errorf("listen.pause must not be negative, got %s", c.Listen.Pause)
	}
	switch c.Speech.Engine {
	case speech.EngineAuto, speech.EngineEspeak, speech.EngineFestival, speech.EngineRemote, speech.EngineMock:
	default:
		return fmt.Errorf("speech.engine: unknown engine %q", c.Speech.Engine)
	}
	if err := validateURL("speech.remote_url", c.Speech.RemoteURL); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", key, raw)
	}
	return nil
}

// Dir returns the user config directory for wordiz.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wordiz"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "wordiz"), nil
}

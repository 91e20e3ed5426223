package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
)

type Config struct {
	DBPath   string         `yaml:"db_path"`
	Storage  StorageConfig  `yaml:"storage"`
	Web      WebConfig      `yaml:"web"`
	Upstream UpstreamConfig `yaml:"upstream"`

	// APIKey comes from the environment only.
	APIKey string `yaml:"-"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Key     string `yaml:"key"`
	// Dir holds one JSON file per slot for the file backend.
	Dir string `yaml:"dir,omitempty"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type UpstreamConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	Temperature       float32       `yaml:"temperature"`
	GenerateMaxTokens int           `yaml:"generate_max_tokens"`
	UpdateMaxTokens   int           `yaml:"update_max_tokens"`
	Concurrency       int           `yaml:"concurrency"`
	Timeout           time.Duration `yaml:"timeout"`
}

func Default() Config {
	return Config{
		Storage: StorageConfig{Backend: BackendSQLite, Key: "todos"},
		Web:     WebConfig{Port: 8080},
		Upstream: UpstreamConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4-turbo-preview",
			Temperature:       0.7,
			GenerateMaxTokens: 4000,
			UpdateMaxTokens:   1500,
			Timeout:           2 * time.Minute,
		},
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "codeplanner", "config.yaml"), nil
}

// DefaultDBPath places the database next to the config file.
func DefaultDBPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "codeplanner.db")
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadEnv fills the credential and base URL override from the environment,
// reading .env from the working directory first when present. Variables
// already set in the process environment win over .env entries.
func (c *Config) LoadEnv() {
	_ = godotenv.Load(".env")

	c.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	if base := strings.TrimSpace(os.Getenv(EnvBaseURL)); base != "" {
		c.Upstream.BaseURL = base
	}
}

func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("web.port", c.Web.Port, portInRange),
		criterio.Run("storage.backend", c.Storage.Backend, knownBackend),
		criterio.Run("storage.key", c.Storage.Key, slotKey),
		c.validateStorageDir(),
		criterio.Run("upstream.temperature", c.Upstream.Temperature, temperatureInRange),
		criterio.Run("upstream.generate_max_tokens", c.Upstream.GenerateMaxTokens, positive),
		criterio.Run("upstream.update_max_tokens", c.Upstream.UpdateMaxTokens, positive),
		criterio.Run("upstream.concurrency", c.Upstream.Concurrency, notNegative),
		criterio.Run("upstream.timeout", c.Upstream.Timeout, durationNotNegative),
	)
}

func (c *Config) validateStorageDir() error {
	if c.Storage.Backend != BackendFile {
		return nil
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return criterio.NewFieldErrors("storage.dir", errors.New("is required for the file backend"))
	}
	return nil
}

func portInRange(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", port)
	}
	return nil
}

func knownBackend(backend string) error {
	switch backend {
	case BackendSQLite, BackendFile, BackendMemory:
		return nil
	}
	return fmt.Errorf("unknown backend %q", backend)
}

func slotKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func temperatureInRange(t float32) error {
	if t < 0 || t > 2 {
		return fmt.Errorf("must be between 0 and 2, got %g", t)
	}
	return nil
}

func positive(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1, got %d", n)
	}
	return nil
}

func notNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("cannot be negative, got %d", n)
	}
	return nil
}

func durationNotNegative(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("cannot be negative, got %s", d)
	}
	return nil
}

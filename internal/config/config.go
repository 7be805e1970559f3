package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Line    LineConfig
	Review  ReviewConfig
	Tracker TrackerConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port       int
	AdminToken string
}

type StorageConfig struct {
	DataDir string
}

type LineConfig struct {
	ChannelAccessToken string
	ChannelSecret      string
}

type ReviewConfig struct {
	OpenAIAPIKey string
	Model        string
}

type TrackerConfig struct {
	CheckInterval time.Duration
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Review: ReviewConfig{
			Model: "gpt-4o-mini",
		},
		Tracker: TrackerConfig{
			CheckInterval: 30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.shopwatch.app) and
// secrets fall back to macOS Keychain. On Linux the backend is a JSON file
// at $XDG_CONFIG_HOME/shopwatch/config.json and secrets live in a
// secrets.json next to the data dir.
//
// Environment variables override backend values on all platforms. The LINE
// channel credentials are required; the OpenAI key is optional and only
// disables LLM review generation when absent.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

const keychainService = "shopwatch"

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Line.ChannelAccessToken == "" {
		if v, err := kc.Get(keychainService, "line_channel_access_token"); err == nil && v != "" {
			cfg.Line.ChannelAccessToken = v
		}
	}
	if cfg.Line.ChannelSecret == "" {
		if v, err := kc.Get(keychainService, "line_channel_secret"); err == nil && v != "" {
			cfg.Line.ChannelSecret = v
		}
	}
	if cfg.Review.OpenAIAPIKey == "" {
		if v, err := kc.Get(keychainService, "openai_api_key"); err == nil && v != "" {
			cfg.Review.OpenAIAPIKey = v
		}
	}

	if cfg.Line.ChannelAccessToken == "" || cfg.Line.ChannelSecret == "" {
		msg := "missing required config: LINE channel credentials. " +
			"Set them via environment variables LINE_CHANNEL_ACCESS_TOKEN and LINE_CHANNEL_SECRET" +
			secretHint()
		return Config{}, fmt.Errorf("%s", msg)
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

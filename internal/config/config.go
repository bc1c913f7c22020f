package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the planner.
type Config struct {
	ListenAddr     string         `yaml:"listen_addr"`
	DatabaseURL    string         `yaml:"database_url"`
	SpeechBinary   string         `yaml:"speech_binary"`
	TelegramToken  string         `yaml:"telegram_token"`
	TelegramChatID int64          `yaml:"telegram_chat_id"`
	Announce       AnnounceConfig `yaml:"announcements"`
}

// AnnounceConfig controls the spoken announcement schedule and voice.
type AnnounceConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Morning     bool   `yaml:"morning"`
	Evening     bool   `yaml:"evening"`
	VoiceName   string `yaml:"voice"`
	VoiceRate   int    `yaml:"voice_rate"`
	VoicePitch  int    `yaml:"voice_pitch"`
	VoiceVolume int    `yaml:"voice_volume"`
}

// Load reads configuration from an optional YAML file and environment
// variables, env taking precedence. A .env file in the working directory is
// loaded first when present.
func Load(path string) (Config, error) {
	// Missing .env is fine; explicit config errors are not.
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:  ":8080",
		DatabaseURL: "taskvoice.db",
		Announce: AnnounceConfig{
			Enabled: true,
			Morning: true,
			Evening: true,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.SpeechBinary, "SPEECH_BINARY")
	setString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	setInt64(&cfg.TelegramChatID, "TELEGRAM_CHAT_ID")
	setBool(&cfg.Announce.Enabled, "ANNOUNCEMENTS_ENABLED")
	setBool(&cfg.Announce.Morning, "MORNING_ENABLED")
	setBool(&cfg.Announce.Evening, "EVENING_ENABLED")
	setString(&cfg.Announce.VoiceName, "VOICE_NAME")
	setInt(&cfg.Announce.VoiceRate, "VOICE_RATE")
	setInt(&cfg.Announce.VoicePitch, "VOICE_PITCH")
	setInt(&cfg.Announce.VoiceVolume, "VOICE_VOLUME")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

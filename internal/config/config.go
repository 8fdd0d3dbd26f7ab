package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	InboxDir  string
	RawDir    string
	OutputDir string
	RulesPath string

	NameMaxEditDistance int
	NamePrefixMatch     bool

	LLMProvider     string
	AnthropicAPIKey string
	LLMModel        string
	LLMMaxTokens    int
	LLMTemperature  float64
	LLMRateLimitRPS int
	LLMTimeoutMs    int

	ListenerIntervalSec int
	ListenerBatch       int
	ListenerAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "shotlist.db")),
		InboxDir:  getEnv("INBOX_DIR", filepath.Join(cwd, "data", "inbox")),
		RawDir:    getEnv("RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		RulesPath: getEnv("RULES_PATH", ""),

		NameMaxEditDistance: getEnvInt("NAME_MAX_EDIT_DISTANCE", 3),
		NamePrefixMatch:     getEnvBool("NAME_PREFIX_MATCH", true),

		LLMProvider:     getEnv("LLM_PROVIDER", "anthropic"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", "claude-sonnet-4-5"),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 4096),
		LLMTemperature:  getEnvFloat("LLM_TEMPERATURE", 0.2),
		LLMRateLimitRPS: getEnvInt("LLM_RATE_LIMIT_RPS", 1),
		LLMTimeoutMs:    getEnvInt("LLM_TIMEOUT_MS", 120000),

		ListenerIntervalSec: getEnvInt("LISTENER_INTERVAL_SEC", 30),
		ListenerBatch:       getEnvInt("LISTENER_BATCH", 20),
		ListenerAutoExport:  getEnvBool("LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

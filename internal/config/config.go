package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	apperrors "shelfsort/internal/errors"
)

type Config struct {
	Environment string `validate:"required"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`
	LogFormat   string `validate:"omitempty,oneof=json pretty"`
	NoColor     bool

	DBPath    string `validate:"required"`
	OutputDir string `validate:"required"`

	IDStrategy string `validate:"oneof=uuid nanoid hash sequence"`
	IDPrefix   string
	IDStart    int `validate:"gte=0"`
	Strict     bool

	CleanedFileName string `validate:"required"`
	GroupedFileName string `validate:"required"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "")),
		NoColor:     getEnvBool("NO_COLOR", false),

		DBPath:    getEnv("SHELFSORT_DB_PATH", filepath.Join(cwd, "data", "shelfsort.db")),
		OutputDir: getEnv("SHELFSORT_OUTPUT_DIR", filepath.Join(cwd, "out")),

		IDStrategy: strings.ToLower(getEnv("SHELFSORT_ID_STRATEGY", "uuid")),
		IDPrefix:   getEnv("SHELFSORT_ID_PREFIX", ""),
		IDStart:    getEnvInt("SHELFSORT_ID_START", 1),
		Strict:     getEnvBool("SHELFSORT_STRICT", false),

		CleanedFileName: getEnv("SHELFSORT_CLEANED_FILE", "books_cleaned.json"),
		GroupedFileName: getEnv("SHELFSORT_GROUPED_FILE", "books_grouped_by_location.json"),
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.InvalidConfig(err)
	}
	return nil
}

// OutputPath resolves name against OutputDir unless it is already absolute.
func (c Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.InvalidConfig(fmt.Errorf("missing required value: %s", name))
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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/cleaner"
	"github.com/Veraticus/disaster-pipeline/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings.
const EnvPrefix = "PROCESS_DATA"

// Configuration keys.
const (
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
	KeyTable            = "output.table"
	KeyIfExists         = "output.if_exists"
	KeyIDColumn         = "input.id_column"
	KeyCategoriesColumn = "input.categories_column"
)

// Settings holds everything the run needs besides the three file paths.
type Settings struct {
	LogLevel         string
	LogFormat        string
	Table            string
	IfExists         storage.IfExists
	IDColumn         string
	CategoriesColumn string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyTable, storage.DefaultTableName)
	v.SetDefault(KeyIfExists, string(storage.IfExistsReplace))
	v.SetDefault(KeyIDColumn, cleaner.DefaultKey)
	v.SetDefault(KeyCategoriesColumn, cleaner.DefaultCategoriesColumn)
}

// ReadConfig points v at cfgFile, or at config.yaml in the standard
// locations, and reads it. A missing default config file is not an error.
func ReadConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		v.AddConfigPath(filepath.Join(home, ".config", "process-data"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables, e.g. PROCESS_DATA_OUTPUT_TABLE
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load builds Settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	mode, err := storage.ParseIfExists(v.GetString(KeyIfExists))
	if err != nil {
		return nil, err
	}

	s := &Settings{
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
		Table:            v.GetString(KeyTable),
		IfExists:         mode,
		IDColumn:         v.GetString(KeyIDColumn),
		CategoriesColumn: v.GetString(KeyCategoriesColumn),
	}

	if s.Table == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyTable)
	}
	return s, nil
}

// CleanerOptions returns the column names the cleaner should use.
func (s *Settings) CleanerOptions() cleaner.Options {
	return cleaner.Options{
		Key:              s.IDColumn,
		CategoriesColumn: s.CategoriesColumn,
	}
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/kotoba-reader/kotoba/internal/japanese"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`

	// ReaderTemplate overrides the embedded reading page template.
	ReaderTemplate string `mapstructure:"reader_template" validate:"omitempty,file"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DictionaryConfig points at a term bank file or a directory of banks.
type DictionaryConfig struct {
	Path       string `mapstructure:"path"`
	MaxResults int    `mapstructure:"max_results" validate:"gte=1,lte=100"`
	MaxSenses  int    `mapstructure:"max_senses" validate:"gte=1"`
	MaxGlosses int    `mapstructure:"max_glosses" validate:"gte=1"`
}

type AnalyzerConfig struct {
	Strategy       string `mapstructure:"strategy" validate:"strategy"`
	UserDictionary string `mapstructure:"user_dictionary" validate:"omitempty,file"`
}

// MaxStrategy returns the most capable tier the analyzer may use.
func (c AnalyzerConfig) MaxStrategy() (japanese.Strategy, error) {
	return japanese.ParseStrategy(c.Strategy)
}

// DatabaseConfig is the story store. Stories are only served when Enabled.
type DatabaseConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	Host            string            `mapstructure:"host" validate:"required_if=Enabled true"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database" validate:"required_if=Enabled true"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	ConnectAttempts uint              `mapstructure:"connect_attempts"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kotoba")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.reader_template", "")
	v.SetDefault("dictionary.path", filepath.Join("data", "dictionary"))
	v.SetDefault("dictionary.max_results", 10)
	v.SetDefault("dictionary.max_senses", 5)
	v.SetDefault("dictionary.max_glosses", 5)
	v.SetDefault("analyzer.strategy", "auto")
	v.SetDefault("analyzer.user_dictionary", "")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "kotoba")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.connect_attempts", 5)

	if err := v.BindEnv("dictionary.path", "KOTOBA_DICTIONARY_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind KOTOBA_DICTIONARY_PATH environment variable: %w", err)
	}
	if err := v.BindEnv("server.port", "KOTOBA_SERVER_PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind KOTOBA_SERVER_PORT environment variable: %w", err)
	}
	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.Analyzer.Strategy = strings.ToLower(strings.TrimSpace(cfg.Analyzer.Strategy))

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

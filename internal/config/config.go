package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"supplier-match/internal/matching"
)

type Config struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	LogLevel     string   `mapstructure:"log_level"`
	MaxUploadMB  int      `mapstructure:"max_upload_mb"`
	LogFile      string   `mapstructure:"log_file"`

	Matching  MatchingConfig  `mapstructure:"matching"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type MatchingConfig struct {
	Threshold         float64 `mapstructure:"threshold"`
	MinSeparatorIndex int     `mapstructure:"min_separator_index"`
	VocabularyFile    string  `mapstructure:"vocabulary_file"` // пусто → встроенный словарь
	Workers           int     `mapstructure:"workers"`         // 0 → GOMAXPROCS
}

// RateLimitConfig — лимит на IP; RPS = 0 выключает лимитер
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Load: defaults → supplier-match.yaml (если есть) → env (PORT, MATCHING_THRESHOLD, ...).
// file — явный путь к конфигу; пустая строка → поиск в . и ./config.
func Load(file string) (Config, error) {
	return LoadViper(viper.New(), file)
}

// LoadViper — то же, что Load, но поверх уже настроенного viper (CLI биндит в него флаги).
func LoadViper(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("supplier-match")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// явно указанный файл обязан существовать
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.AllowOrigins = splitOrigins(cfg.AllowOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8082)
	v.SetDefault("allow_origins", []string{"*"})
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_mb", 256)
	v.SetDefault("log_file", "logs/supplier-match.log")

	v.SetDefault("matching.threshold", matching.DefaultThreshold)
	v.SetDefault("matching.min_separator_index", matching.DefaultMinSeparatorIndex)
	v.SetDefault("matching.vocabulary_file", "")
	v.SetDefault("matching.workers", 0)

	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("metrics.enabled", true)
}

// ALLOW_ORIGINS="a, b" приходит одной строкой
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	}
	if err := matching.ValidateThreshold(c.Matching.Threshold); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Matching.Workers < 0 {
		return fmt.Errorf("%w: matching.workers must be >= 0", ErrInvalidConfig)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: ratelimit values must be >= 0", ErrInvalidConfig)
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Matcher собирает движок сопоставления из секции matching.
func (c Config) Matcher() (*matching.Matcher, error) {
	vocab := matching.DefaultVocabulary()
	if c.Matching.VocabularyFile != "" {
		var err error
		if vocab, err = matching.LoadVocabulary(c.Matching.VocabularyFile); err != nil {
			return nil, err
		}
	}
	opt := matching.DefaultNormalizeOptions()
	opt.MinSeparatorIndex = c.Matching.MinSeparatorIndex
	tok := matching.NewTokenizer(matching.NewNormalizer(opt), vocab)
	return matching.NewMatcher(tok, c.Matching.Threshold)
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load,
// e.g. BABEL_DATABASE_URL overrides database.url.
const envPrefix = "BABEL"

// Load reads configuration from environment variables and optionally from a
// config.yaml file in the working directory. Environment variables take
// precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars alone can carry the config.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every known key with its default value. Registering
// all keys up front is also what lets AutomaticEnv pick up env-only values
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("worker.log_level", "info")
	v.SetDefault("worker.run_migrations", false)

	v.SetDefault("database.url", "")

	v.SetDefault("broker.url", "")
	v.SetDefault("broker.translation_queue", "translation_tasks")
	v.SetDefault("broker.mail_queue", "mail_jobs")

	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.gemini_api_key", "")
	v.SetDefault("provider.max_attempts", 3)
	v.SetDefault("provider.retry_base_delay_seconds", 2)
	v.SetDefault("provider.retry_max_delay_seconds", 10)
	v.SetDefault("provider.request_timeout_seconds", 120)

	v.SetDefault("translation.max_words_in_text", 1000000)
	v.SetDefault("translation.max_words_in_chunk", 400)
	v.SetDefault("translation.max_concurrent_chunks", 8)
	v.SetDefault("translation.charge_tokens", true)
}

// validate checks the loaded configuration against the struct tags.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

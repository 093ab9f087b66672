package cli

import (
	"time"

	"github.com/lgc202/pwless-go/config"
	"github.com/lgc202/pwless-go/pwless"
	"github.com/spf13/pflag"
)

// Settings is everything the CLI can be configured with, from lowest to highest
// precedence: defaults, --config file, environment, flags.
type Settings struct {
	Secret  string        `mapstructure:"secret"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Log     LogSettings   `mapstructure:"log"`
	Rate    RateSettings  `mapstructure:"rate"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateSettings struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func loadSettings(path string, flags *pflag.FlagSet) (Settings, error) {
	cfg, err := config.Load[Settings](path,
		config.WithWatch[Settings](false),
		config.WithDefaults[Settings](map[string]any{
			"secret":     "",
			"url":        pwless.DefaultBaseURL,
			"timeout":    pwless.DefaultTimeout,
			"log.level":  "warn",
			"log.format": "text",
			"rate.rps":   0,
			"rate.burst": 1,
		}),
		config.WithEnvBinding[Settings]("secret", pwless.EnvSecret),
		config.WithEnvBinding[Settings]("url", pwless.EnvAPIURL),
		config.WithEnvBinding[Settings]("timeout", "PWLESS_TIMEOUT"),
		config.WithEnvBinding[Settings]("log.level", "PWLESS_LOG_LEVEL"),
		config.WithFlag[Settings]("secret", flags.Lookup("secret")),
		config.WithFlag[Settings]("url", flags.Lookup("url")),
		config.WithFlag[Settings]("timeout", flags.Lookup("timeout")),
		config.WithFlag[Settings]("log.level", flags.Lookup("log-level")),
		config.WithFlag[Settings]("log.format", flags.Lookup("log-format")),
		config.WithFlag[Settings]("rate.rps", flags.Lookup("rps")),
		config.WithFlag[Settings]("rate.burst", flags.Lookup("burst")),
	)
	if err != nil {
		return Settings{}, err
	}
	return cfg.Get(), nil
}

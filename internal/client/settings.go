package client

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings are the tunables of the background client. Everything has a
// default; the settings file and SCHUGAA_* environment variables are both
// optional.
type Settings struct {
	HTTPTimeout   time.Duration     `mapstructure:"http_timeout"`
	SessionTTL    time.Duration     `mapstructure:"session_ttl"`
	AutoSpacing   time.Duration     `mapstructure:"auto_spacing"`
	ForcedSpacing time.Duration     `mapstructure:"forced_spacing"`
	PollInterval  time.Duration     `mapstructure:"poll_interval"`
	LogFile       string            `mapstructure:"log_file"`
	Regions       map[string]string `mapstructure:"regions"`
}

// LoadSettings reads ~/.schugaa/settings.yaml if present and applies
// defaults and environment overrides.
func LoadSettings() (Settings, error) {
	var settings Settings

	dir, err := Dir()
	if err != nil {
		return settings, err
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("schugaa")
	v.AutomaticEnv()

	v.SetDefault("http_timeout", 20*time.Second)
	// The API does not expose a trustworthy ticket lifetime; one hour is a
	// conservative refresh boundary, not a measured TTL.
	v.SetDefault("session_ttl", time.Hour)
	v.SetDefault("auto_spacing", 45*time.Second)
	v.SetDefault("forced_spacing", 10*time.Second)
	v.SetDefault("poll_interval", 5*time.Minute)
	v.SetDefault("log_file", "")

	if err = v.ReadInConfig(); err != nil {
		var notfound viper.ConfigFileNotFoundError
		if !errors.As(err, &notfound) {
			return settings, errors.Wrap(err, "could not read settings")
		}
	}

	err = v.Unmarshal(&settings)
	return settings, errors.Wrap(err, "could not parse settings")
}

// Package config loads runner settings from config file, environment,
// and defaults.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the tunable surface of the measurement engine.
type Config struct {
	MinIterations         int
	MinMilliseconds       int
	WriteResultsToConsole bool
	MetricsAddr           string
}

// MinDuration returns the configured minimum timed-run duration.
func (c Config) MinDuration() time.Duration {
	return time.Duration(c.MinMilliseconds) * time.Millisecond
}

// Load reads configuration: .env if present, then an optional config
// file (explicit path or ./config.yaml), then MICROPROBE_* environment
// variables, with defaults underneath.
func Load(cfgFile string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MICROPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("min_iterations", 5)
	v.SetDefault("min_milliseconds", 500)
	v.SetDefault("write_results", true)
	v.SetDefault("metrics_addr", "")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file in the search path is fine; a malformed
		// file or an unreadable explicit path is not.
		if cfgFile != "" {
			return Config{}, err
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return Config{
		MinIterations:         v.GetInt("min_iterations"),
		MinMilliseconds:       v.GetInt("min_milliseconds"),
		WriteResultsToConsole: v.GetBool("write_results"),
		MetricsAddr:           v.GetString("metrics_addr"),
	}, nil
}

// ConnConfig describes a database endpoint for the round-trip benchmark.
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

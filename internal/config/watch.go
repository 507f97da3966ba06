package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// WatchConfig holds configuration for the watch loop.
type WatchConfig struct {
	RPCURL       string
	Manager      string
	Factory      string
	TokenIDs     []string
	PGDSN        string
	Out          string
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadWatch merges config file, environment variables, and flags into
// WatchConfig.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("interval", 15*time.Second)
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return WatchConfig{}, err
	}

	cfg := WatchConfig{
		RPCURL:       v.GetString("rpc"),
		Manager:      v.GetString("manager"),
		Factory:      v.GetString("factory"),
		TokenIDs:     getStringSlice(v, "token-id"),
		PGDSN:        v.GetString("pg-dsn"),
		Out:          v.GetString("out"),
		Interval:     v.GetDuration("interval"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// QuoteConfig holds configuration for bonding-curve quotes.
type QuoteConfig struct {
	RPCURL   string
	Curve    string
	Amount   string
	Side     string
	LogLevel string
}

// LoadQuote merges config file, environment variables, and flags into
// QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("side", "buy")
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		RPCURL:   v.GetString("rpc"),
		Curve:    v.GetString("curve"),
		Amount:   v.GetString("amount"),
		Side:     v.GetString("side"),
		LogLevel: v.GetString("log-level"),
	}

	return cfg, nil
}

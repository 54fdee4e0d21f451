package cli

import (
	"os"

	"github.com/spf13/viper"
)

// config holds flag defaults merged from the environment and an optional
// config file. Flags always override these values.
type config struct {
	Registry string `mapstructure:"registry"`
	Workers  int    `mapstructure:"workers"`
	Color    bool   `mapstructure:"color"`
	Prefix   string `mapstructure:"prefix"`
}

// loadConfig reads OUTDATED_* environment variables and, when OUTDATED_CONFIG
// points at a file, a YAML config file. Unreadable config is ignored rather
// than fatal: a broken rc file should not block a report.
func loadConfig() config {
	v := viper.New()
	v.SetEnvPrefix("OUTDATED")
	v.AutomaticEnv()

	v.SetDefault("registry", "")
	v.SetDefault("workers", 0)
	v.SetDefault("color", false)
	v.SetDefault("prefix", "")

	if path := os.Getenv("OUTDATED_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		_ = v.ReadInConfig()
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}
	}
	return cfg
}

package qrun

import "github.com/spf13/viper"

/*
Config controls how source text is presented to the engine. Seed zero means
measurements draw from a fresh random seed on every run.
*/
type Config struct {
	Debug         bool
	SourceName    string
	PackagePrefix string
	Seed          uint64
}

func NewConfig() *Config {
	return &Config{
		Debug:      true,
		SourceName: "temp.qs",
	}
}

// LoadConfig reads overrides from v, including QRUN_* environment variables.
func LoadConfig(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}

	defaults := NewConfig()
	v.SetEnvPrefix("qrun")
	v.AutomaticEnv()
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("source_name", defaults.SourceName)
	v.SetDefault("package_prefix", defaults.PackagePrefix)
	v.SetDefault("seed", defaults.Seed)

	return &Config{
		Debug:         v.GetBool("debug"),
		SourceName:    v.GetString("source_name"),
		PackagePrefix: v.GetString("package_prefix"),
		Seed:          v.GetUint64("seed"),
	}
}

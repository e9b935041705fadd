package main

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// settings are the viper keys fitsdump reads. Each is also a flag.
var settings = []string{"format", "log-level", "strip", "jobs", "summary"}

type config struct {
	Format   string
	LogLevel slog.Level
	Strip    bool
	Jobs     int
	Summary  bool
}

func defineFlags(flags *pflag.FlagSet) {
	flags.StringP("format", "f", "text", "output format: text, json, yaml or cbor")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("strip", false, "omit structural keys such as NAXIS and BITPIX")
	flags.IntP("jobs", "j", runtime.NumCPU(), "number of files dumped concurrently")
	flags.Bool("summary", true, "print totals over all files")
}

// loadConfig reads cfgFile, or ./.fitsdump.yaml when cfgFile is empty,
// layers FITSDUMP_* environment variables over it and validates the
// result. Flags bound to v take precedence over both.
func loadConfig(v *viper.Viper, cfgFile string) (config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(".fitsdump")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("FITSDUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := config{
		Format:  strings.ToLower(v.GetString("format")),
		Strip:   v.GetBool("strip"),
		Jobs:    v.GetInt("jobs"),
		Summary: v.GetBool("summary"),
	}
	switch cfg.Format {
	case "text", "json", "yaml", "cbor":
	default:
		return config{}, fmt.Errorf("unknown format %q", cfg.Format)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return config{}, fmt.Errorf("log-level: %w", err)
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg, nil
}

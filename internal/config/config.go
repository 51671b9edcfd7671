package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel   string           `mapstructure:"log_level"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Server     ServerConfig     `mapstructure:"server"`
}

// DictionaryConfig selects the pronunciation dictionary. An empty Path uses
// the bundled subset.
type DictionaryConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

type AnalysisConfig struct {
	Workers int `mapstructure:"workers"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	Workers         int    `mapstructure:"workers"`
	Banner          bool   `mapstructure:"banner"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Dictionary: DictionaryConfig{
			Path:  "",
			Watch: false,
		},
		Analysis: AnalysisConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    16384,
			RequestTimeout:  10,
			ShutdownTimeout: 30,
			Workers:         8,
			Banner:          true,
		},
	}
}

// flagKeys maps each registered flag to its nested config key.
var flagKeys = map[string]string{
	"log-level":               "log_level",
	"dictionary-path":         "dictionary.path",
	"dictionary-watch":        "dictionary.watch",
	"analysis-workers":        "analysis.workers",
	"server-listen-addr":      "server.listen_addr",
	"server-max-text-bytes":   "server.max_text_bytes",
	"server-request-timeout":  "server.request_timeout",
	"server-shutdown-timeout": "server.shutdown_timeout",
	"server-workers":          "server.workers",
	"server-banner":           "server.banner",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("dictionary-path", defaults.Dictionary.Path, "Path to a CMUdict-format pronunciation dictionary (empty uses the bundled subset)")
	fs.Bool("dictionary-watch", defaults.Dictionary.Watch, "Reload the dictionary file when it changes")
	fs.Int("analysis-workers", defaults.Analysis.Workers, "Max texts analyzed in parallel in batch mode")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum text size accepted per request")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request analysis deadline in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent analysis requests (0 = unlimited)")
	fs.Bool("server-banner", defaults.Server.Banner, "Print the startup banner")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("VISEMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("visemes")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("dictionary.path", c.Dictionary.Path)
	v.SetDefault("dictionary.watch", c.Dictionary.Watch)
	v.SetDefault("analysis.workers", c.Analysis.Workers)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.banner", c.Server.Banner)
}

// bindFlags binds every known flag present in fs to its nested key, so that
// explicitly set flags win over config file and environment values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

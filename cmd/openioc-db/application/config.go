package application

import (
	"errors"
	"fmt"
	"path"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/anchore/go-logger"
)

// ConfigSearchLocations is advertised in the root command help output.
var ConfigSearchLocations = []string{
	"." + Name + ".yaml",
	path.Join("$XDG_CONFIG_HOME", Name, "config.yaml"),
	path.Join("$HOME", "."+Name+".yaml"),
}

type Config struct {
	ConfigPath          string `yaml:"-" json:"-" mapstructure:"-"`
	DryRun              bool   `yaml:"dry-run" json:"dry-run" mapstructure:"dry-run"`
	DisableLoadFromDisk bool   `yaml:"-" json:"-" mapstructure:"-"`
	Log                 Log    `yaml:"log" json:"log" mapstructure:"log"`
	Dev                 Dev    `yaml:"dev" json:"dev" mapstructure:"dev"`
}

type Log struct {
	Quiet        bool         `yaml:"quiet" json:"quiet" mapstructure:"quiet"`
	Verbosity    int          `yaml:"-" json:"-" mapstructure:"-"`
	Level        logger.Level `yaml:"level" json:"level" mapstructure:"level"`
	FileLocation string       `yaml:"file" json:"file" mapstructure:"file"`
}

type Dev struct {
	ProfileCPU bool `yaml:"profile-cpu" json:"profile-cpu" mapstructure:"profile-cpu"`
	ProfileMem bool `yaml:"profile-mem" json:"profile-mem" mapstructure:"profile-mem"`
}

func (cfg *Config) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	if err := v.BindPFlag("log.quiet", flags.Lookup("quiet")); err != nil {
		return err
	}
	if err := v.BindPFlag("dry-run", flags.Lookup("dry-run")); err != nil {
		return err
	}

	// set default values for non-bound struct items
	v.SetDefault("log.level", string(logger.WarnLevel))
	v.SetDefault("log.file", "")
	v.SetDefault("dev.profile-cpu", false)
	v.SetDefault("dev.profile-mem", false)

	return nil
}

func (cfg *Config) Load(v *viper.Viper) error {
	if !cfg.DisableLoadFromDisk {
		if err := readConfig(v, cfg.ConfigPath); err != nil {
			return err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to parse application config: %w", err)
	}

	return cfg.build()
}

func (cfg *Config) build() error {
	switch {
	case cfg.Log.Quiet:
		cfg.Log.Level = logger.DisabledLevel
	case cfg.Log.Verbosity > 0:
		cfg.Log.Level = logger.LevelFromVerbosity(cfg.Log.Verbosity, logger.WarnLevel, logger.InfoLevel, logger.DebugLevel, logger.TraceLevel)
	default:
		if cfg.Log.Level == "" {
			cfg.Log.Level = logger.WarnLevel
		}
		lvl, err := logger.LevelFromString(string(cfg.Log.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
		cfg.Log.Level = lvl
	}
	return nil
}

func readConfig(v *viper.Viper, configPath string) error {
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read application config from %q: %w", configPath, err)
		}
		return nil
	}

	v.SetConfigName("." + Name)
	v.AddConfigPath(".")
	v.AddConfigPath(path.Join(xdg.ConfigHome, Name))
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// not having a config file is fine
			return nil
		}
		return fmt.Errorf("unable to read application config: %w", err)
	}
	return nil
}

func (cfg Config) String() string {
	// yaml is pretty human friendly (at least when compared to json)
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		type plain Config
		return fmt.Sprintf("%+v", plain(cfg))
	}
	return string(out)
}

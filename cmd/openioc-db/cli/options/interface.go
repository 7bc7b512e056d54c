package options

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Interface is implemented by every command configuration: flags are registered on the
// command and bound to viper so that config files and environment variables participate.
type Interface interface {
	AddFlags(flags *pflag.FlagSet)
	BindFlags(flags *pflag.FlagSet, v *viper.Viper) error
}

func AddAllFlags(flags *pflag.FlagSet, opts ...Interface) {
	for _, o := range opts {
		o.AddFlags(flags)
	}
}

func BindAllFlags(flags *pflag.FlagSet, v *viper.Viper, opts ...Interface) error {
	for _, o := range opts {
		if err := o.BindFlags(flags, v); err != nil {
			return err
		}
	}
	return nil
}

func Bind(v *viper.Viper, key string, flag *pflag.Flag) error {
	return v.BindPFlag(key, flag)
}

package options

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var _ Interface = &Store{}

type Store struct {
	// bound options
	Directory string `yaml:"dir" json:"dir" mapstructure:"dir"`
	Overwrite bool   `yaml:"overwrite" json:"overwrite" mapstructure:"overwrite"`

	// unbound options
	// (none)
}

func DefaultStore() Store {
	return Store{
		Directory: "./build",
	}
}

func (o *Store) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(
		&o.Directory,
		"dir", "d", o.Directory,
		"directory where the object store is written",
	)

	flags.BoolVarP(
		&o.Overwrite,
		"overwrite", "", o.Overwrite,
		"discard any existing object store and start fresh",
	)
}

func (o *Store) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	// set default values for bound struct items
	if err := Bind(v, "store.dir", flags.Lookup("dir")); err != nil {
		return err
	}
	if err := Bind(v, "store.overwrite", flags.Lookup("overwrite")); err != nil {
		return err
	}

	// set default values for non-bound struct items
	// (none)

	return nil
}

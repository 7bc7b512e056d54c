package options

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var _ Interface = &Package{}

type Package struct {
	// bound options
	ArchivePath string `yaml:"archive" json:"archive" mapstructure:"archive"`

	// unbound options
	// (none)
}

func DefaultPackage() Package {
	return Package{
		ArchivePath: "openioc-db.tar.zst",
	}
}

func (o *Package) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(
		&o.ArchivePath,
		"archive", "", o.ArchivePath,
		"path of the archive to create (supports .tar, .tar.gz and .tar.zst suffixes)",
	)
}

func (o *Package) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	// set default values for bound struct items
	if err := Bind(v, "package.archive", flags.Lookup("archive")); err != nil {
		return err
	}

	// set default values for non-bound struct items
	// (none)

	return nil
}

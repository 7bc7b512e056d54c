package options

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cybercercher/openioc-db/pkg/openioc"
)

var _ Interface = &Import{}

type Import struct {
	// bound options
	IdentifierNamespace string   `yaml:"identifier-namespace" json:"identifier-namespace" mapstructure:"identifier-namespace"`
	Markings            []string `yaml:"markings" json:"markings" mapstructure:"markings"`

	// unbound options
	// (none)
}

func DefaultImport() Import {
	return Import{
		IdentifierNamespace: openioc.DefaultIdentifierNamespaceURI,
	}
}

func (o *Import) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(
		&o.IdentifierNamespace,
		"identifier-namespace", "n", o.IdentifierNamespace,
		"namespace URI identifying the owner of the imported objects (e.g. the IOC publisher)",
	)

	flags.StringArrayVarP(
		&o.Markings,
		"marking", "m", o.Markings,
		"provenance marking attached to every generated object (can be specified multiple times)",
	)
}

func (o *Import) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	// set default values for bound struct items
	if err := Bind(v, "import.identifier-namespace", flags.Lookup("identifier-namespace")); err != nil {
		return err
	}
	if err := Bind(v, "import.markings", flags.Lookup("marking")); err != nil {
		return err
	}

	// set default values for non-bound struct items
	// (none)

	return nil
}

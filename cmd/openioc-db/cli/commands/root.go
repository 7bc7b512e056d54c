package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cybercercher/openioc-db/cmd/openioc-db/application"
	"github.com/cybercercher/openioc-db/cmd/openioc-db/cli/options"
	"github.com/cybercercher/openioc-db/internal/utils"
)

var _ options.Interface = &rootConfig{}

type rootConfig struct {
	options.Store   `yaml:"store" json:"store" mapstructure:"store"`
	options.Import  `yaml:"import" json:"import" mapstructure:"import"`
	options.Package `yaml:"package" json:"package" mapstructure:"package"`
}

func (o *rootConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store, &o.Import, &o.Package)
}

func (o *rootConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store, &o.Import, &o.Package)
}

func Root(app *application.Application) *cobra.Command {
	cfg := rootConfig{
		Store:   options.DefaultStore(),
		Import:  options.DefaultImport(),
		Package: options.DefaultPackage(),
	}
	appCfg := app.Config

	cmd := &cobra.Command{
		Use:     "",
		Short:   "import OpenIOC indicator documents and package the resulting object store for distribution",
		Version: application.ReadBuildInfo().Version,
		PreRunE: app.Setup(&cfg),
		Example: formatRootExamples(),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return app.Run(cmd.Context(), async(func() error {
				if err := runImport(importConfig{
					Store:  cfg.Store,
					Import: cfg.Import,
				}, args); err != nil {
					return err
				}

				return runPackage(packageConfig{
					Store:   cfg.Store,
					Package: cfg.Package,
				})
			}))
		},
	}

	commonConfiguration(nil, cmd, &cfg)

	cmd.SetVersionTemplate(fmt.Sprintf("%s {{.Version}}\n", application.Name))

	flags := cmd.PersistentFlags()

	flags.StringVarP(&appCfg.ConfigPath, "config", "c", "", "path to the application config")
	flags.BoolVarP(&appCfg.DryRun, "dry-run", "", false, "parse the application config, CLI flags, and exit.")
	flags.CountVarP(&appCfg.Log.Verbosity, "verbose", "v", "increase verbosity (-v = debug, -vv = trace)")
	flags.BoolVarP(&appCfg.Log.Quiet, "quiet", "q", false, "suppress all logging output")

	return cmd
}

func formatRootExamples() string {
	examples := fmt.Sprintf(`%[1]s import threat-report.ioc
%[1]s import -n mandiant.com -m apt1-report apt1/*.ioc
%[1]s status -d ./build`, application.Name)

	return fmt.Sprintf(`Examples:
%s

Application config search locations:
  %s`, utils.Indent(examples, "  "), strings.Join(application.ConfigSearchLocations, "\n  "))
}

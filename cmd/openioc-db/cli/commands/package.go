package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cybercercher/openioc-db/cmd/openioc-db/application"
	"github.com/cybercercher/openioc-db/cmd/openioc-db/cli/options"
	"github.com/cybercercher/openioc-db/internal/log"
	"github.com/cybercercher/openioc-db/internal/tarutil"
	"github.com/cybercercher/openioc-db/pkg/store"
)

var _ options.Interface = &packageConfig{}

type packageConfig struct {
	options.Store   `yaml:"store" json:"store" mapstructure:"store"`
	options.Package `yaml:"package" json:"package" mapstructure:"package"`
}

func (o *packageConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store, &o.Package)
}

func (o *packageConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store, &o.Package)
}

func Package(app *application.Application) *cobra.Command {
	cfg := packageConfig{
		Store:   options.DefaultStore(),
		Package: options.DefaultPackage(),
	}

	cmd := &cobra.Command{
		Use:     "package",
		Short:   "archive the object store for distribution",
		Args:    cobra.NoArgs,
		PreRunE: app.Setup(&cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), async(func() error {
				return runPackage(cfg)
			}))
		},
	}

	commonConfiguration(app, cmd, &cfg)

	return cmd
}

func runPackage(cfg packageConfig) error {
	dbPath := filepath.Join(cfg.Store.Directory, store.StoreFileName)

	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no object store at %q", dbPath)
	}

	log.WithFields("archive", cfg.Package.ArchivePath).Info("packaging object store")

	w, err := tarutil.NewWriter(cfg.Package.ArchivePath)
	if err != nil {
		return fmt.Errorf("unable to create archive: %w", err)
	}

	if err := w.WriteFiles(dbPath); err != nil {
		w.Close()
		return fmt.Errorf("unable to write archive: %w", err)
	}

	if err := w.Close(); err != nil {
		return err
	}

	stat, err := os.Stat(cfg.Package.ArchivePath)
	if err != nil {
		return err
	}
	log.Infof("created archive %q (%s)", cfg.Package.ArchivePath, humanize.Bytes(uint64(stat.Size())))

	return nil
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cybercercher/openioc-db/cmd/openioc-db/application"
	"github.com/cybercercher/openioc-db/cmd/openioc-db/cli/options"
	"github.com/cybercercher/openioc-db/internal/log"
	"github.com/cybercercher/openioc-db/pkg/openioc"
	"github.com/cybercercher/openioc-db/pkg/store"
	"github.com/cybercercher/openioc-db/pkg/store/sqlite"
)

var _ options.Interface = &importConfig{}

type importConfig struct {
	options.Store  `yaml:"store" json:"store" mapstructure:"store"`
	options.Import `yaml:"import" json:"import" mapstructure:"import"`
}

func (o *importConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store, &o.Import)
}

func (o *importConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store, &o.Import)
}

func Import(app *application.Application) *cobra.Command {
	cfg := importConfig{
		Store:  options.DefaultStore(),
		Import: options.DefaultImport(),
	}

	cmd := &cobra.Command{
		Use:     "import FILE [FILE...]",
		Short:   "import OpenIOC indicator documents into the object store",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: app.Setup(&cfg),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), async(func() error {
				return runImport(cfg, args)
			}))
		},
	}

	commonConfiguration(app, cmd, &cfg)

	return cmd
}

func runImport(cfg importConfig, files []string) error {
	if err := os.MkdirAll(cfg.Store.Directory, 0o755); err != nil {
		return fmt.Errorf("unable to create store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Store.Directory, store.StoreFileName)

	s, cleanup, err := sqlite.NewStore(dbPath, cfg.Store.Overwrite)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Warnf("unable to close object store: %+v", err)
		}
	}()

	if err := ensureID(s); err != nil {
		return err
	}

	importer := openioc.NewImporter(s, openioc.Config{
		IdentifierNamespaceURI: cfg.Import.IdentifierNamespace,
		Markings:               cfg.Import.Markings,
	})

	// a bad document should not stop the remaining documents from being imported
	var errs *multierror.Error
	for _, f := range files {
		log.WithFields("file", f).Info("importing document")
		if _, err := importer.ImportFile(f); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func ensureID(s store.Store) error {
	id, err := s.GetID()
	if err != nil {
		return fmt.Errorf("unable to read object store ID: %w", err)
	}
	if id == nil {
		return s.SetID(store.NewID(time.Now()))
	}
	if id.SchemaVersion != store.SchemaVersion {
		return fmt.Errorf("unsupported object store schema version: %d", id.SchemaVersion)
	}
	return nil
}

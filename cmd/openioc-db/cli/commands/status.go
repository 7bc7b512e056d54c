package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cybercercher/openioc-db/cmd/openioc-db/application"
	"github.com/cybercercher/openioc-db/cmd/openioc-db/cli/options"
	"github.com/cybercercher/openioc-db/pkg/store"
	"github.com/cybercercher/openioc-db/pkg/store/sqlite"
)

var _ options.Interface = &statusConfig{}

type statusConfig struct {
	options.Store `yaml:"store" json:"store" mapstructure:"store"`
}

func (o *statusConfig) AddFlags(flags *pflag.FlagSet) {
	options.AddAllFlags(flags, &o.Store)
}

func (o *statusConfig) BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	return options.BindAllFlags(flags, v, &o.Store)
}

func Status(app *application.Application) *cobra.Command {
	cfg := statusConfig{
		Store: options.DefaultStore(),
	}

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "display object store status",
		Args:    cobra.NoArgs,
		PreRunE: app.Setup(&cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), async(func() error {
				return runStatus(cfg)
			}))
		},
	}

	commonConfiguration(app, cmd, &cfg)

	return cmd
}

func runStatus(cfg statusConfig) error {
	dbPath := filepath.Join(cfg.Store.Directory, store.StoreFileName)

	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no object store at %q", dbPath)
	}

	s, cleanup, err := sqlite.NewStore(dbPath, false)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := s.GetID()
	if err != nil {
		return fmt.Errorf("unable to read object store ID: %w", err)
	}

	count, err := s.CountInfoObjects()
	if err != nil {
		return fmt.Errorf("unable to count objects: %w", err)
	}

	fmt.Println("Location: ", dbPath)
	if id != nil {
		fmt.Println("Built:    ", id.BuildTimestamp.Format(time.RFC3339))
		fmt.Println("Schema:   ", id.SchemaVersion)
	}
	fmt.Println("Objects:  ", humanize.Comma(count))

	return nil
}

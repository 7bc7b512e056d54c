package cli

import (
	"github.com/spf13/cobra"

	"github.com/cybercercher/openioc-db/cmd/openioc-db/application"
	"github.com/cybercercher/openioc-db/cmd/openioc-db/cli/commands"
)

type config struct {
	app *application.Application
}

type Option func(*config)

func WithApplication(app *application.Application) Option {
	return func(config *config) {
		config.app = app
	}
}

func New(opts ...Option) *cobra.Command {
	cfg := &config{
		app: application.New(),
	}
	for _, fn := range opts {
		fn(cfg)
	}

	app := cfg.app

	root := commands.Root(app)
	root.AddCommand(commands.Version(app))
	root.AddCommand(commands.Import(app))
	root.AddCommand(commands.Status(app))
	root.AddCommand(commands.Package(app))

	return root
}

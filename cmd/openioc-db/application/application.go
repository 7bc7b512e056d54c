package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wagoodman/go-partybus"
	"gopkg.in/yaml.v3"

	"github.com/anchore/go-logger/adapter/logrus"

	"github.com/cybercercher/openioc-db/cmd/openioc-db/cli/options"
	"github.com/cybercercher/openioc-db/internal"
	"github.com/cybercercher/openioc-db/internal/bus"
	"github.com/cybercercher/openioc-db/internal/event"
	"github.com/cybercercher/openioc-db/internal/log"
	"github.com/cybercercher/openioc-db/internal/utils"
)

const Name = internal.ApplicationName

type Application struct {
	Config       *Config
	subscription *partybus.Subscription
}

func New() *Application {
	return &Application{
		Config: &Config{},
	}
}

func (a *Application) Setup(opts options.Interface) func(cmd *cobra.Command, args []string) error {
	v := newViper()
	return func(cmd *cobra.Command, _ []string) error {
		// bind options to viper
		if opts != nil {
			if err := opts.BindFlags(cmd.Flags(), v); err != nil {
				return err
			}
		}

		if err := a.Config.BindFlags(cmd.Root().PersistentFlags(), v); err != nil {
			return fmt.Errorf("unable to bind persistent flags: %w", err)
		}

		if err := a.Config.Load(v); err != nil {
			return fmt.Errorf("invalid application config: %w", err)
		}

		// load initial command configuration from file...
		if a.Config.ConfigPath != "" {
			f, err := os.Open(a.Config.ConfigPath)
			if err != nil {
				return fmt.Errorf("unable to open config file: %w", err)
			}
			defer f.Close()
			contents, err := io.ReadAll(f)
			if err != nil {
				return fmt.Errorf("unable to read config file: %w", err)
			}
			if err := yaml.Unmarshal(contents, opts); err != nil {
				return fmt.Errorf("unable to unmarshal command elements from application config: %w", err)
			}
		}

		// setup command config...
		if opts != nil {
			err := v.Unmarshal(opts)
			if err != nil {
				return fmt.Errorf("unable to unmarshal command configuration for cmd=%q: %w", strings.TrimSpace(cmd.CommandPath()), err)
			}

			if r, ok := opts.(log.Redactable); ok {
				r.Redact()
			}
		}

		// setup logger...
		if err := setupLogger(a.Config); err != nil {
			return err
		}

		// show the app version and configuration...
		logVersion()
		logConfiguration(a.Config, opts)

		if a.Config.DryRun {
			log.Warn("dry-run mode enabled, exiting")
			os.Exit(0)
		}

		// setup the event bus (before any publishers in the workers run)...
		b := partybus.NewBus()
		bus.SetPublisher(b)
		a.subscription = b.Subscribe()

		return nil
	}
}

func (a Application) Run(ctx context.Context, errs <-chan error) error {
	if a.Config.Dev.ProfileCPU {
		defer profile.Start(profile.CPUProfile).Stop()
	} else if a.Config.Dev.ProfileMem {
		defer profile.Start(profile.MemProfile).Stop()
	}

	err := a.consumeEvents(ctx, errs)
	if err != nil {
		log.Error(err.Error())
	}
	return err
}

// consumeEvents drains worker errors and bus events until the exit event is published or the
// context is cancelled.
func (a Application) consumeEvents(ctx context.Context, errs <-chan error) error {
	var events <-chan partybus.Event
	if a.subscription != nil {
		events = a.subscription.Events()
	}

	var retErr *multierror.Error
	for {
		select {
		case <-ctx.Done():
			retErr = multierror.Append(retErr, ctx.Err())
			return retErr.ErrorOrNil()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				if events == nil {
					return retErr.ErrorOrNil()
				}
				continue
			}
			if err != nil {
				retErr = multierror.Append(retErr, err)
			}

		case e, ok := <-events:
			if !ok {
				return retErr.ErrorOrNil()
			}
			switch e.Type {
			case event.ImportFinished:
				if summary, ok := e.Value.(event.ImportSummary); ok && !a.Config.Log.Quiet {
					fmt.Printf("%s %s (%s objects, %s facts)\n",
						color.Green.Sprint("imported"),
						summary.Source,
						humanize.Comma(int64(summary.Objects)),
						humanize.Comma(int64(summary.Facts)),
					)
				}
			case event.Exit:
				return retErr.ErrorOrNil()
			}
		}
	}
}

func logConfiguration(app *Config, opts interface{}) {
	var optsStr string

	if opts != nil {
		if stringer, ok := opts.(fmt.Stringer); ok {
			optsStr = stringer.String()
		} else {
			// yaml is pretty human friendly (at least when compared to json)
			cfgBytes, err := yaml.Marshal(&opts)
			if err != nil {
				optsStr = fmt.Sprintf("%+v", opts)
			} else {
				optsStr = string(cfgBytes)
			}
		}
	}

	log.Debugf("config:\n%+v", formatConfig(app.String())+"\n"+formatConfig(optsStr))
}

func logVersion() {
	versionInfo := ReadBuildInfo()
	log.Infof("%s version: %+v", Name, versionInfo.Version)
}

func setupLogger(app *Config) error {
	cfg := logrus.Config{
		EnableConsole: app.Log.Verbosity > 0 && !app.Log.Quiet,
		FileLocation:  app.Log.FileLocation,
		Level:         app.Log.Level,
	}

	l, err := logrus.New(cfg)
	if err != nil {
		return err
	}

	log.Set(l)

	return nil
}

func formatConfig(config string) string {
	return color.Magenta.Sprint(utils.Indent(strings.TrimSpace(config), "  "))
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(
		viper.EnvKeyReplacer(
			strings.NewReplacer(".", "_", "-", "_"),
		),
	)

	// load environment variables
	v.SetEnvPrefix(Name)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	return v
}

package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/toyz/apimod/internal/cli"
	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/utils"
)

// app holds the state shared by the commands of one invocation
type app struct {
	configFile string

	config      *cli.Config
	diagnostics *utils.DiagnosticSystem
	logger      *zap.SugaredLogger

	// stdout and stderr replace the terminal when set, with colors off
	stdout io.Writer
	stderr io.Writer
}

func newApp() *app {
	return &app{}
}

var persistentFlags = []string{"verbose", "quiet", "debug", "strict", "runtime", "report"}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "apimod [paths...]",
		Short: "apimod - interface declaration and static linkage generator",
		Long: `apimod generates Go packages from .apimod interface declarations.

A definition module declares API functions; apimod turns it into a package
with one forwarding function per declaration and an interface collecting
them. An implementation module provides the bodies; apimod turns it into a
package registering its implementation of that interface at start-up.

Paths support Go-style patterns:
  ./...              Scan the current directory and all subdirectories
  ./arch/...         Scan arch and all its subdirectories
  ./api              Scan only the api directory

Examples:
  apimod generate ./...          # Generate every module
  apimod check --strict ./...    # Verify modules without writing files
  apimod clean ./...             # Remove generated apimod_gen.go files
  apimod watch ./hv/...          # Regenerate on change`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runGenerate,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: ./"+cli.ConfigFileName+" when present)")
	flags.BoolP("verbose", "v", false, "Enable verbose output and detailed error reporting")
	flags.BoolP("quiet", "q", false, "Only show errors and final results")
	flags.Bool("debug", false, "Enable debug logging of the generation pipeline")
	flags.Bool("strict", false, "Treat consistency warnings as errors")
	flags.String("runtime", "", "Import path of the apimod support package")
	flags.String("report", "", "Write a YAML generation report to this file")

	root.AddCommand(
		&cobra.Command{
			Use:   "generate [paths...]",
			Short: "Generate packages from .apimod files",
			RunE:  a.runGenerate,
		},
		&cobra.Command{
			Use:   "check [paths...]",
			Short: "Parse and check .apimod files without writing anything",
			RunE:  a.runCheck,
		},
		&cobra.Command{
			Use:   "clean [paths...]",
			Short: "Remove generated apimod_gen.go files",
			RunE:  a.runClean,
		},
		&cobra.Command{
			Use:   "watch [paths...]",
			Short: "Regenerate whenever .apimod files change",
			RunE:  a.runWatch,
		},
	)

	return root
}

// setup loads the configuration and builds the output and logging stack
func (a *app) setup(cmd *cobra.Command, args []string) error {
	v, err := cli.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	config, err := cli.LoadConfig(v)
	if err != nil {
		return err
	}
	config.Paths = args
	a.config = config

	a.diagnostics = utils.NewDiagnosticSystem(config.DiagnosticLevel())
	if a.stdout != nil {
		a.diagnostics.SetOutput(a.stdout, a.stderr)
	}

	logger := zap.NewNop()
	if config.Debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			return errors.WrapConfigurationError("logger", "initialize", err)
		}
	}
	a.logger = logger.Sugar()

	a.logger.Debugw("Configuration loaded",
		"config_file", v.ConfigFileUsed(),
		"paths", config.Paths,
		"strict", config.Strict,
		"runtime", config.Runtime)
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, name := range persistentFlags {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return errors.WrapConfigurationError(name, "bind", err)
		}
	}
	return nil
}

func (a *app) newGenerator() *cli.Generator {
	gen := cli.NewGenerator(a.config, a.diagnostics, a.logger.Named("generate"))
	if a.stderr != nil {
		gen.Reporter().SetOutput(a.stderr)
	}
	return gen
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	return a.newGenerator().Generate()
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	return a.newGenerator().Check()
}

func (a *app) runClean(cmd *cobra.Command, args []string) error {
	a.diagnostics.Header("Cleaning generated files")

	removed, err := cli.NewCleaner(utils.NewFileProcessor()).CleanGeneratedFiles(args)
	if len(removed) > 0 {
		a.diagnostics.Subsection("Removed")
		a.diagnostics.Indent()
		for _, path := range removed {
			a.diagnostics.List("%s", path)
		}
		a.diagnostics.Unindent()
	}
	if err != nil {
		a.diagnostics.Error("Clean operation failed: %v", err)
		return cli.ErrDiagnosticsReported
	}

	a.diagnostics.Success("Removed %d generated file(s)", len(removed))
	return nil
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.diagnostics.Info("Watching %v (debounce %s), press Ctrl+C to stop", a.config.Paths, a.config.Watch.Debounce)
	watcher := cli.NewWatcher(a.newGenerator(), a.config.Watch.Debounce, a.logger.Named("watch"))
	return watcher.Run(ctx)
}

package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/revops-pilot/pkg/runtime/app"
	"github.com/de-tools/revops-pilot/pkg/runtime/terminal/commands"
	"github.com/de-tools/revops-pilot/pkg/services/config"
	"github.com/de-tools/revops-pilot/pkg/services/source"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry  source.Registry
	output    io.Writer
	logOutput io.Writer
	rootCmd   *cobra.Command

	configPath string
	envFile    string
	verbose    bool
	cfg        *config.Config
}

// Options contain configuration for the CLI
type Options struct {
	Registry source.Registry
	Output   io.Writer
	// LogOutput receives structured logs; defaults to stderr
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Registry == nil {
		opts.Registry = source.DefaultRegistry()
	}

	cli := &CLI{
		registry:  opts.Registry,
		output:    opts.Output,
		logOutput: opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "revops",
		Short:             "Reconcile sales pipeline sources and summarize weekly deltas",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.setup,
	}

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to revops.yaml")
	cmd.PersistentFlags().StringVar(&cli.envFile, "env-file", ".env", "Dotenv file loaded before configuration")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Enable debug logging")

	env := commands.Env{
		NewApp: cli.newApp,
		Output: cli.output,
	}
	cmd.AddCommand(commands.NewSummarizeCmd(env))
	cmd.AddCommand(commands.NewStagesCmd(env))
	cmd.AddCommand(commands.NewSeedCmd(env))
	cmd.AddCommand(commands.NewRunCmd(env))
	cmd.AddCommand(commands.NewRunsCmd(env))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	level := zerolog.InfoLevel
	if cli.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.logOutput, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))

	if cli.envFile != "" {
		if err := godotenv.Load(cli.envFile); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("file", cli.envFile).Msg("failed to load env file")
		}
	}

	cfg, err := config.LoadConfig(cli.configPath)
	if err != nil {
		return &ConfigError{Err: err}
	}
	cli.cfg = cfg
	logger.Debug().Str("driver", cfg.Database.Driver).Msg("configuration loaded")
	return nil
}

func (cli *CLI) newApp(ctx context.Context, opts app.Options) (*app.App, error) {
	return app.New(ctx, cli.cfg, cli.registry, opts)
}

package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/revops-pilot/pkg/runtime/app"
	"github.com/de-tools/revops-pilot/pkg/server"
	"github.com/de-tools/revops-pilot/pkg/services/config"
	"github.com/de-tools/revops-pilot/pkg/services/source"
	"github.com/de-tools/revops-pilot/pkg/services/workflow"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for revops-pilot",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to revops.yaml")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a, err := app.New(ctx, cfg, source.DefaultRegistry(), app.Options{
		Narrate: cfg.LLM.APIKey != "",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer a.Close()

	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("sources", cfg.Sources).
		Msg("configuration loaded")

	runs := workflow.NewController(a.Runner)
	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Dependencies: server.Dependencies{
			Pipeline: a.Runner,
			Runs:     runs,
		},
	})

	err = api.Start()
	// background runs use the databases closed by a.Close
	runs.CancelAll(ctx)
	return err
}

// Command romportal runs the certificate portal: the public verification
// page API, the registrant intake form and the admin dashboard API.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"romportal/internal/platform/config"
	"romportal/internal/platform/logger"
)

const programName = "romportal"

var globalFlags = struct {
	configFile string
	envFile    string
	logLevel   string
}{}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Certificate issuance and verification portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globalFlags.configFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.envFile, "env-file", ".env", "path to dotenv file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logLevel, "log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(createAdminCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and builds the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(globalFlags.configFile, globalFlags.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if globalFlags.logLevel != "" {
		cfg.LogLevel = globalFlags.logLevel
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		return nil, nil, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	if cfg.UsesDevSigningKey() {
		log.Warn("JWT_SIGNING_KEY not set; using the development signing key")
	}
	return cfg, log, nil
}

// Package cli implements the policyinsight command line: local document
// comparison and analysis, schema migrations and build information.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/postgres"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/intelligence/common"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// SchemaMigrator is the subset of *postgres.Migrator the migrate command uses.
type SchemaMigrator interface {
	Up() error
	Down(steps int) error
	Status() (postgres.MigrationState, error)
}

// CommandDependencies lets callers replace the infrastructure behind
// commands. Nil fields take the production constructors.
type CommandDependencies struct {
	NewMigrator func(cfg config.DatabaseConfig, logger logging.Logger) SchemaMigrator
	NewAsker    func(ctx context.Context, cfg config.AIConfig, logger logging.Logger) (common.Asker, error)
	// LoadConfig defaults to config.LoadOrEnv.
	LoadConfig func(path string) (*config.Config, error)
}

func (d CommandDependencies) withDefaults() CommandDependencies {
	if d.NewMigrator == nil {
		d.NewMigrator = func(cfg config.DatabaseConfig, logger logging.Logger) SchemaMigrator {
			return postgres.NewMigrator(cfg.DSN(), cfg.MigrationPath, logger)
		}
	}
	if d.NewAsker == nil {
		d.NewAsker = func(ctx context.Context, cfg config.AIConfig, logger logging.Logger) (common.Asker, error) {
			return common.NewAskerFromConfig(ctx, cfg, nil, nil, logger)
		}
	}
	if d.LoadConfig == nil {
		d.LoadConfig = config.LoadOrEnv
	}
	return d
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand(deps CommandDependencies) *cobra.Command {
	deps = deps.withDefaults()
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "policyinsight",
		Short: "PolicyInsight CLI: compare and analyze policy documents",
		Long: "PolicyInsight compares two policy documents, reporting coverage, financial terms,\n" +
			"exclusions and claims differences, with optional model-generated insights.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, table)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 3*time.Minute, "global operation timeout")

	cmd.AddCommand(
		NewCompareCmd(deps),
		NewAnalyzeCmd(),
		NewMigrateCmd(deps),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun validates global flags, loads config and the logger, then
// stores the CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, deps CommandDependencies) error {
	format := strings.ToLower(opts.OutputFormat)
	switch format {
	case OutputText, OutputJSON, OutputTable:
	default:
		return errors.Newf(errors.ErrCodeValidation, "invalid output format %q (must be text|json|table)", opts.OutputFormat)
	}
	if opts.Timeout <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "timeout must be positive, got %s", opts.Timeout)
	}

	cfg, err := deps.LoadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	if opts.NoColor {
		color.NoColor = true
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: format,
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand(CommandDependencies{})
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

//Personal.AI order the ending

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// NewMigrateCmd creates the migrate command and its up, down and status subcommands.
func NewMigrateCmd(deps CommandDependencies) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newSchemaMigrator(cmd, deps)
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil {
				return errors.Wrap(err, errors.ErrCodeDatabaseError, "migrate up failed")
			}
			return printMigrationState(cmd, m, "migrations applied")
		},
	}

	downCmd := &cobra.Command{
		Use:   "down <steps>",
		Short: "Roll back the given number of migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := strconv.Atoi(args[0])
			if err != nil || steps < 1 {
				return errors.Newf(errors.ErrCodeValidation, "steps must be a positive integer, got %q", args[0])
			}
			m, err := newSchemaMigrator(cmd, deps)
			if err != nil {
				return err
			}
			if err := m.Down(steps); err != nil {
				return errors.Wrap(err, errors.ErrCodeDatabaseError, "migrate down failed")
			}
			return printMigrationState(cmd, m, fmt.Sprintf("rolled back %d migration(s)", steps))
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newSchemaMigrator(cmd, deps)
			if err != nil {
				return err
			}
			return printMigrationState(cmd, m, "")
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, statusCmd)
	return migrateCmd
}

func newSchemaMigrator(cmd *cobra.Command, deps CommandDependencies) (SchemaMigrator, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	return deps.NewMigrator(cliCtx.Config.Database, cliCtx.Logger), nil
}

func printMigrationState(cmd *cobra.Command, m SchemaMigrator, done string) error {
	state, err := m.Status()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration status")
	}
	if done != "" {
		PrintSuccess(cmd, done)
	}
	return PrintResult(cmd, migrationStatus{Version: state.Version, Dirty: state.Dirty})
}

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationStatus) TableHeaders() []string { return []string{"Version", "Dirty"} }

func (s migrationStatus) TableRows() [][]string {
	return [][]string{{strconv.FormatUint(uint64(s.Version), 10), strconv.FormatBool(s.Dirty)}}
}

func (s migrationStatus) WriteText(w io.Writer) {
	state := color.GreenString("clean")
	if s.Dirty {
		state = color.RedString("dirty")
	}
	fmt.Fprintf(w, "Schema version: %d (%s)\n", s.Version, state)
}

//Personal.AI order the ending

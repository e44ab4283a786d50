// Package cmd implements the abcd-validator command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itaxotools/abcd-validator/internal/core"
	"github.com/itaxotools/abcd-validator/internal/logging"
)

var (
	schemaPath string
	logLevel   string
	logFormat  string
)

// errReportHasErrors signals that a run finished but found errors.
// It maps to exit code 1, as opposed to 2 for fatal failures.
var errReportHasErrors = errors.New("validation found errors")

var rootCmd = &cobra.Command{
	Use:   "abcd-validator",
	Short: "Validate biodiversity collection tables against the ABCD schema",
	Long: `abcd-validator checks delimited specimen, measurement and multimedia
tables for structural and semantic conformance to the ABCD (Access to
Biological Collection Data) exchange schema.

The ruleset is configuration: the embedded default covers the common
ABCD columns, and --schema points at a YAML file for other versions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel, logFormat)
	},
}

// Execute runs the CLI and returns the process exit code:
// 0 for a valid table set, 1 when the report contains errors,
// 2 for fatal failures (unreadable files, bad schema, bad flags).
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, errReportHasErrors) {
		return 1
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if msg := core.MapError(err); msg.Code != "ERR000" {
		fmt.Fprintf(os.Stderr, "%s (code %s)\n", msg.Action, msg.Code)
	}
	return 2
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "YAML ruleset file (default: embedded ABCD ruleset, or SCHEMA_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

// buildRegistry resolves the active ruleset: the --schema flag wins,
// then SCHEMA_PATH, then the embedded default.
func buildRegistry() (*core.Registry, error) {
	path := schemaPath
	if path == "" {
		path = os.Getenv("SCHEMA_PATH")
	}
	if path == "" {
		return core.DefaultRegistry(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema %s: %w", path, err)
	}
	defer f.Close()

	reg, err := core.LoadRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return reg, nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itaxotools/abcd-validator/internal/core"
)

var (
	specimenFile    string
	measurementFile string
	multimediaFile  string
	delimiterName   string
	outputFormat    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a set of three collection tables",
	Long: `Validate runs the full pipeline over the three input tables and
prints the report. The process exits 0 when the report has no errors,
1 when it does, and 2 when the run could not complete at all.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&specimenFile, "specimen", "", "specimen table file")
	validateCmd.Flags().StringVar(&measurementFile, "measurement", "", "measurement table file")
	validateCmd.Flags().StringVar(&multimediaFile, "multimedia", "", "multimedia table file")
	validateCmd.Flags().StringVar(&delimiterName, "delimiter", "auto", "delimiter: auto, comma, semicolon or tab")
	validateCmd.Flags().StringVar(&outputFormat, "format", "text", "output format: text or json")

	for _, flag := range []string{"specimen", "measurement", "multimedia"} {
		_ = validateCmd.MarkFlagRequired(flag)
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry()
	if err != nil {
		return err
	}

	delim, err := core.ParseDelimiter(delimiterName)
	if err != nil {
		return err
	}

	paths := map[core.TableRole]string{
		core.RoleSpecimen:    specimenFile,
		core.RoleMeasurement: measurementFile,
		core.RoleMultimedia:  multimediaFile,
	}

	inputs := make(map[core.TableRole]core.Input, len(paths))
	for role, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return &core.LoadError{Role: role, Reason: "open file", Err: err}
		}
		defer f.Close()
		inputs[role] = core.Input{Reader: f, Delimiter: delim}
	}

	report, err := core.NewRunner(reg).Run(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	case "text":
		printReport(cmd, report)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", outputFormat)
	}

	if !report.Valid {
		return errReportHasErrors
	}
	return nil
}

// printReport writes the report as one line per finding plus a summary.
func printReport(cmd *cobra.Command, report *core.Report) {
	out := cmd.OutOrStdout()
	for _, f := range report.Findings {
		location := string(f.Table)
		if f.Line > 0 {
			location = fmt.Sprintf("%s line %d", location, f.Line)
		}
		if f.Column != "" {
			location = fmt.Sprintf("%s column %s", location, f.Column)
		}
		fmt.Fprintf(out, "%s: [%s] %s: %s\n",
			severityLabel(f.Severity), f.Code, location, f.Message)
	}

	if report.Valid {
		fmt.Fprintf(out, "OK: 0 errors, %d warnings\n", report.Summary.Warnings)
	} else {
		fmt.Fprintf(out, "FAILED: %d errors, %d warnings\n",
			report.Summary.Errors, report.Summary.Warnings)
	}
}

func severityLabel(s core.Severity) string {
	switch s {
	case core.SeverityError:
		return "ERROR"
	case core.SeverityWarning:
		return "WARNING"
	default:
		return string(s)
	}
}

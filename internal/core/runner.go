package core

// runner.go orchestrates one validation run: the three tables load and
// field-validate in parallel (each works on its own stream and its own
// finding slice), then the pipeline joins before the cross-table phase,
// which needs every table in memory.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Input is one table's byte stream plus its delimiter.
// Delimiter 0 means sniff from the header line.
type Input struct {
	Reader    io.Reader
	Delimiter rune
}

// Runner executes validation runs against a fixed registry.
// A Runner holds no per-run state and is safe for concurrent use.
type Runner struct {
	registry *Registry
}

// NewRunner creates a runner for the given registry.
func NewRunner(reg *Registry) *Runner {
	return &Runner{registry: reg}
}

// Run validates one table set and returns its report.
//
// All three roles must have an input and a spec; a missing input is a
// *LoadError and a missing spec a *SchemaError, both fatal. Data-level
// problems never abort the run: the returned report is complete however
// many findings it contains. Same inputs and registry always produce an
// identical report.
func (r *Runner) Run(ctx context.Context, inputs map[TableRole]Input) (*Report, error) {
	// Resolve specs up front so a schema problem aborts before any I/O.
	specs := make(map[TableRole]TableSpec, len(Roles()))
	for _, role := range Roles() {
		if _, ok := inputs[role]; !ok {
			return nil, &LoadError{Role: role, Reason: "no input provided"}
		}
		spec, err := r.registry.Spec(role)
		if err != nil {
			return nil, err
		}
		specs[role] = spec
	}

	type tableResult struct {
		table    *Table
		findings []Finding
	}

	var mu sync.Mutex
	results := make(map[TableRole]tableResult, len(Roles()))

	// The derived context only propagates cancellation between the table
	// goroutines; errgroup cancels it once Wait returns, so it must not
	// be confused with the caller's ctx afterwards.
	g, gctx := errgroup.WithContext(ctx)
	for _, role := range Roles() {
		role := role
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := inputs[role]
			table, findings, err := Load(role, in.Reader, in.Delimiter)
			if err != nil {
				return err
			}
			findings = append(findings, ValidateFields(table, specs[role])...)

			slog.Debug("table validated",
				"table", role,
				"rows", len(table.Rows),
				"excluded", table.Excluded,
				"findings", len(findings),
			)

			mu.Lock()
			results[role] = tableResult{table: table, findings: findings}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("validation cancelled: %w", err)
		}
		return nil, err
	}

	var findings []Finding
	tables := make(map[TableRole]*Table, len(results))
	for _, role := range Roles() {
		res := results[role]
		findings = append(findings, res.findings...)
		tables[role] = res.table
	}

	findings = append(findings, ValidateReferences(tables, r.registry)...)

	report := BuildReport(findings)
	slog.Info("validation run complete",
		"errors", report.Summary.Errors,
		"warnings", report.Summary.Warnings,
		"valid", report.Valid,
	)
	return report, nil
}

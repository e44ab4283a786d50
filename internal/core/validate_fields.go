package core

// validate_fields.go applies the per-column rules of a table spec to
// every surviving row of a loaded table.

import (
	"fmt"
	"strings"
)

// ValidateFields checks every row of a table against the column specs
// for its role and returns the resulting findings.
//
// Emission order is fixed for determinism: unknown-column warnings in
// header order first, then row by row in load order, within each row in
// declared spec column order. Every row is checked against every rule;
// a failure on one column never short-circuits the rest.
func ValidateFields(t *Table, spec TableSpec) []Finding {
	var findings []Finding

	// One warning per distinct unknown column name. These are header
	// findings, so they carry no line number.
	declared := make(map[string]bool, len(spec.Columns))
	for _, col := range spec.Columns {
		declared[strings.ToLower(col.Name)] = true
	}
	warned := make(map[string]bool)
	for _, col := range t.Columns {
		if col == "" || declared[col] || warned[col] {
			continue
		}
		warned[col] = true
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Table:    t.Role,
			Column:   col,
			Code:     CodeUnknownColumn,
			Message:  fmt.Sprintf("column %q is not part of the %s schema", col, t.Role),
		})
	}

	for _, row := range t.Rows {
		for _, col := range spec.Columns {
			findings = append(findings, checkCell(t.Role, row, col)...)
		}
	}

	return findings
}

// checkCell applies one column spec to one row.
func checkCell(role TableRole, row Row, col ColumnSpec) []Finding {
	raw, present := row.Cell(col.Name)
	value := strings.TrimSpace(raw)

	if !present || value == "" {
		if !col.Required {
			return nil
		}
		return []Finding{{
			Severity: SeverityError,
			Table:    role,
			Line:     row.Line,
			Column:   col.Name,
			Code:     CodeMissingRequired,
			Message:  fmt.Sprintf("required value for %q is missing", col.Name),
		}}
	}

	switch col.Type {
	case ColumnInteger:
		if !isInteger(value) {
			return []Finding{{
				Severity: SeverityError,
				Table:    role,
				Line:     row.Line,
				Column:   col.Name,
				Code:     CodeInvalidType,
				Message:  fmt.Sprintf("%q is not a whole number", value),
			}}
		}
	case ColumnDecimal:
		if !isDecimal(value) {
			return []Finding{{
				Severity: SeverityError,
				Table:    role,
				Line:     row.Line,
				Column:   col.Name,
				Code:     CodeInvalidType,
				Message:  fmt.Sprintf("%q is not a number", value),
			}}
		}
	case ColumnDate:
		if !isDate(value) {
			return []Finding{{
				Severity: SeverityError,
				Table:    role,
				Line:     row.Line,
				Column:   col.Name,
				Code:     CodeInvalidDate,
				Message:  fmt.Sprintf("%q is not a date (use YYYY-MM-DD, YYYY-MM or YYYY)", value),
			}}
		}
	case ColumnEnum:
		if !inEnum(value, col.EnumValues) {
			return []Finding{{
				Severity: SeverityError,
				Table:    role,
				Line:     row.Line,
				Column:   col.Name,
				Code:     CodeInvalidEnum,
				Message: fmt.Sprintf("%q is not one of: %s",
					value, strings.Join(col.EnumValues, ", ")),
			}}
		}
	}
	return nil
}

// inEnum reports membership in an allowed-value set, case-insensitively.
func inEnum(value string, allowed []string) bool {
	for _, v := range allowed {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

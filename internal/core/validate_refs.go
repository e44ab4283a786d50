package core

// validate_refs.go checks the constraints that span tables: referential
// integrity between the three roles and uniqueness of each table's
// primary identifier. It runs after all tables are loaded and only over
// rows that survived structural filtering; tables are read-only here.

import (
	"fmt"
	"strings"
)

// ValidateReferences checks cross-table references and key uniqueness
// over a full table set. Roles without a loaded table or without a spec
// are skipped; the runner guarantees neither happens in a normal run.
func ValidateReferences(tables map[TableRole]*Table, reg *Registry) []Finding {
	var findings []Finding

	// Value sets for reference targets, built lazily and shared across
	// rules pointing at the same target column.
	valueSets := make(map[string]map[string]bool)
	targetValues := func(role TableRole, column string) map[string]bool {
		key := string(role) + "\x00" + column
		if set, ok := valueSets[key]; ok {
			return set
		}
		set := make(map[string]bool)
		if target, ok := tables[role]; ok {
			for _, row := range target.Rows {
				if v, ok := row.Cell(column); ok {
					if v = strings.TrimSpace(v); v != "" {
						set[v] = true
					}
				}
			}
		}
		valueSets[key] = set
		return set
	}

	for _, role := range Roles() {
		t, ok := tables[role]
		if !ok {
			continue
		}
		spec, err := reg.Spec(role)
		if err != nil {
			continue
		}

		findings = append(findings, checkKeyUniqueness(t, spec)...)

		for _, col := range spec.Columns {
			if col.Ref == nil {
				continue
			}
			set := targetValues(col.Ref.Table, col.Ref.Column)
			for _, row := range t.Rows {
				raw, ok := row.Cell(col.Name)
				if !ok {
					continue
				}
				value := strings.TrimSpace(raw)
				if value == "" || set[value] {
					continue
				}
				findings = append(findings, Finding{
					Severity: SeverityError,
					Table:    role,
					Line:     row.Line,
					Column:   col.Name,
					Code:     CodeBrokenReference,
					Message: fmt.Sprintf("value %q not found in %s.%s",
						value, col.Ref.Table, col.Ref.Column),
				})
			}
		}
	}

	return findings
}

// checkKeyUniqueness emits one duplicate_identifier finding for every
// repeat of a non-empty key value past its first occurrence.
func checkKeyUniqueness(t *Table, spec TableSpec) []Finding {
	if spec.Key == "" {
		return nil
	}

	var findings []Finding
	seen := make(map[string]int)
	for _, row := range t.Rows {
		raw, ok := row.Cell(spec.Key)
		if !ok {
			continue
		}
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if first, dup := seen[value]; dup {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Table:    t.Role,
				Line:     row.Line,
				Column:   spec.Key,
				Code:     CodeDuplicateID,
				Message: fmt.Sprintf("identifier %q already used on line %d",
					value, first),
			})
			continue
		}
		seen[value] = row.Line
	}
	return findings
}

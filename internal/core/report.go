package core

// report.go assembles validator findings into the final report.

import "sort"

// BuildReport sorts findings into their canonical order and computes
// the per-severity summary. It never fails: an empty finding list
// yields a valid, zero-error report.
//
// Order: table role (specimen, measurement, multimedia), then line
// number ascending with table-level findings first, then column name
// ascending with column-less findings first. The sort is stable, so
// findings equal under this key keep their emission order and the
// whole report stays deterministic.
func BuildReport(findings []Finding) *Report {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if roleOrder(a.Table) != roleOrder(b.Table) {
			return roleOrder(a.Table) < roleOrder(b.Table)
		}
		if a.Line != b.Line {
			return a.Line < b.Line // 0 means table-level and sorts first
		}
		return a.Column < b.Column // "" sorts first
	})

	report := &Report{Findings: sorted}
	for _, f := range sorted {
		switch f.Severity {
		case SeverityError:
			report.Summary.Errors++
		case SeverityWarning:
			report.Summary.Warnings++
		}
	}
	report.Valid = report.Summary.Errors == 0
	return report
}

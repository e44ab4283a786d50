package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBuildReport_Ordering(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityError, Table: RoleMultimedia, Line: 2, Column: "file_name", Code: CodeMissingRequired},
		{Severity: SeverityError, Table: RoleSpecimen, Line: 5, Column: "sex", Code: CodeInvalidEnum},
		{Severity: SeverityWarning, Table: RoleSpecimen, Column: "color", Code: CodeUnknownColumn},
		{Severity: SeverityError, Table: RoleMeasurement, Line: 3, Column: "unit_id", Code: CodeBrokenReference},
		{Severity: SeverityError, Table: RoleSpecimen, Line: 2, Column: "unit_id", Code: CodeDuplicateID},
		{Severity: SeverityError, Table: RoleSpecimen, Line: 2, Column: "collected", Code: CodeInvalidDate},
	}

	report := BuildReport(findings)

	type pos struct {
		table  TableRole
		line   int
		column string
	}
	want := []pos{
		{RoleSpecimen, 0, "color"},     // header finding before any row
		{RoleSpecimen, 2, "collected"}, // same line sorts by column
		{RoleSpecimen, 2, "unit_id"},
		{RoleSpecimen, 5, "sex"},
		{RoleMeasurement, 3, "unit_id"},
		{RoleMultimedia, 2, "file_name"},
	}
	if len(report.Findings) != len(want) {
		t.Fatalf("findings = %d, want %d", len(report.Findings), len(want))
	}
	for i, w := range want {
		f := report.Findings[i]
		if f.Table != w.table || f.Line != w.line || f.Column != w.column {
			t.Errorf("finding %d = %s line %d column %q, want %s line %d column %q",
				i, f.Table, f.Line, f.Column, w.table, w.line, w.column)
		}
	}
}

func TestBuildReport_StableForEqualKeys(t *testing.T) {
	// Two findings at the same position keep their emission order.
	findings := []Finding{
		{Severity: SeverityError, Table: RoleSpecimen, Line: 2, Column: "sex", Code: CodeInvalidEnum},
		{Severity: SeverityError, Table: RoleSpecimen, Line: 2, Column: "sex", Code: CodeInvalidType},
	}

	report := BuildReport(findings)
	if report.Findings[0].Code != CodeInvalidEnum || report.Findings[1].Code != CodeInvalidType {
		t.Errorf("order = %s, %s, want emission order preserved",
			report.Findings[0].Code, report.Findings[1].Code)
	}
}

func TestBuildReport_Summary(t *testing.T) {
	report := BuildReport([]Finding{
		{Severity: SeverityError, Table: RoleSpecimen, Line: 2, Code: CodeMissingRequired},
		{Severity: SeverityWarning, Table: RoleSpecimen, Column: "color", Code: CodeUnknownColumn},
		{Severity: SeverityError, Table: RoleMeasurement, Line: 3, Code: CodeBrokenReference},
	})

	if report.Summary.Errors != 2 || report.Summary.Warnings != 1 {
		t.Errorf("summary = %+v, want 2 errors, 1 warning", report.Summary)
	}
	if report.Valid {
		t.Error("Valid = true, want false with errors present")
	}
}

func TestBuildReport_WarningsOnlyIsValid(t *testing.T) {
	report := BuildReport([]Finding{
		{Severity: SeverityWarning, Table: RoleSpecimen, Column: "color", Code: CodeUnknownColumn},
	})

	if !report.Valid {
		t.Error("Valid = false, want true for warnings only")
	}
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil)

	if !report.Valid || report.Summary.Errors != 0 || report.Summary.Warnings != 0 {
		t.Errorf("report = %+v, want valid and empty", report)
	}
	if len(report.Findings) != 0 {
		t.Errorf("Findings = %v, want empty", report.Findings)
	}
}

func TestBuildReport_DoesNotMutateInput(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityError, Table: RoleMultimedia, Line: 9, Code: CodeInvalidType},
		{Severity: SeverityError, Table: RoleSpecimen, Line: 2, Code: CodeInvalidType},
	}

	BuildReport(findings)
	if findings[0].Table != RoleMultimedia {
		t.Error("BuildReport reordered the caller's slice")
	}
}

func TestFindingJSON(t *testing.T) {
	// Table-level findings omit line and column entirely.
	data, err := json.Marshal(Finding{
		Severity: SeverityWarning,
		Table:    RoleSpecimen,
		Column:   "color",
		Code:     CodeUnknownColumn,
		Message:  `column "color" is not part of the specimen schema`,
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), `"line"`) {
		t.Errorf("JSON = %s, want line omitted when zero", data)
	}
	if !strings.Contains(string(data), `"column":"color"`) {
		t.Errorf("JSON = %s, want column present", data)
	}
}

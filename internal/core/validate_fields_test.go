package core

import "testing"

func fieldSpec() TableSpec {
	return TableSpec{
		Role: RoleSpecimen,
		Key:  "unit_id",
		Columns: []ColumnSpec{
			{Name: "unit_id", Type: ColumnText, Required: true},
			{Name: "collected", Type: ColumnDate},
			{Name: "latitude", Type: ColumnDecimal},
			{Name: "replicates", Type: ColumnInteger},
			{Name: "sex", Type: ColumnEnum, EnumValues: []string{"male", "female", "unknown"}},
		},
	}
}

func specimenRow(line int, cells map[string]string) Row {
	return Row{Line: line, Cells: cells}
}

func TestValidateFields_ValidRows(t *testing.T) {
	table := &Table{
		Role:    RoleSpecimen,
		Columns: []string{"unit_id", "collected", "latitude", "replicates", "sex"},
		Rows: []Row{
			specimenRow(2, map[string]string{
				"unit_id": "S1", "collected": "2024-03-15", "latitude": "-12.5",
				"replicates": "3", "sex": "female",
			}),
			specimenRow(3, map[string]string{
				"unit_id": "S2", "collected": "2024", "latitude": ".5",
				"replicates": "0", "sex": "MALE", // enum match is case-insensitive
			}),
		},
	}

	if findings := ValidateFields(table, fieldSpec()); len(findings) != 0 {
		t.Errorf("findings = %v, want none", findings)
	}
}

func TestValidateFields_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		cells map[string]string
	}{
		{name: "absent", cells: map[string]string{"collected": "2024"}},
		{name: "empty", cells: map[string]string{"unit_id": ""}},
		{name: "whitespace only", cells: map[string]string{"unit_id": "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &Table{Role: RoleSpecimen, Rows: []Row{specimenRow(2, tt.cells)}}

			findings := ValidateFields(table, fieldSpec())
			if len(findings) != 1 {
				t.Fatalf("findings = %v, want exactly one", findings)
			}
			f := findings[0]
			if f.Code != CodeMissingRequired || f.Column != "unit_id" || f.Line != 2 {
				t.Errorf("finding = %+v, want missing_required_value on unit_id line 2", f)
			}
		})
	}
}

func TestValidateFields_OptionalEmptySkipsTypeCheck(t *testing.T) {
	table := &Table{Role: RoleSpecimen, Rows: []Row{
		specimenRow(2, map[string]string{"unit_id": "S1", "collected": "", "latitude": "  "}),
	}}

	if findings := ValidateFields(table, fieldSpec()); len(findings) != 0 {
		t.Errorf("findings = %v, want none for empty optional cells", findings)
	}
}

func TestValidateFields_TypeViolations(t *testing.T) {
	tests := []struct {
		name     string
		cells    map[string]string
		wantCol  string
		wantCode string
	}{
		{
			name:     "bad integer",
			cells:    map[string]string{"unit_id": "S1", "replicates": "3.5"},
			wantCol:  "replicates",
			wantCode: CodeInvalidType,
		},
		{
			name:     "bad decimal",
			cells:    map[string]string{"unit_id": "S1", "latitude": "north"},
			wantCol:  "latitude",
			wantCode: CodeInvalidType,
		},
		{
			name:     "bad date",
			cells:    map[string]string{"unit_id": "S1", "collected": "15/03/2024"},
			wantCol:  "collected",
			wantCode: CodeInvalidDate,
		},
		{
			name:     "impossible date",
			cells:    map[string]string{"unit_id": "S1", "collected": "2024-02-30"},
			wantCol:  "collected",
			wantCode: CodeInvalidDate,
		},
		{
			name:     "bad enum",
			cells:    map[string]string{"unit_id": "S1", "sex": "hermaphrodite"},
			wantCol:  "sex",
			wantCode: CodeInvalidEnum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &Table{Role: RoleSpecimen, Rows: []Row{specimenRow(2, tt.cells)}}

			findings := ValidateFields(table, fieldSpec())
			if len(findings) != 1 {
				t.Fatalf("findings = %v, want exactly one", findings)
			}
			f := findings[0]
			if f.Code != tt.wantCode || f.Column != tt.wantCol || f.Severity != SeverityError {
				t.Errorf("finding = %+v, want %s error on %s", f, tt.wantCode, tt.wantCol)
			}
		})
	}
}

func TestValidateFields_AllRulesPerRow(t *testing.T) {
	// One row breaking three rules yields three findings; no rule
	// short-circuits the others.
	table := &Table{Role: RoleSpecimen, Rows: []Row{
		specimenRow(2, map[string]string{
			"collected": "soon", "replicates": "many",
		}),
	}}

	findings := ValidateFields(table, fieldSpec())
	if len(findings) != 3 {
		t.Fatalf("findings = %v, want 3", findings)
	}
	// Spec column order: unit_id, collected, replicates
	wantCodes := []string{CodeMissingRequired, CodeInvalidDate, CodeInvalidType}
	for i, want := range wantCodes {
		if findings[i].Code != want {
			t.Errorf("finding %d code = %s, want %s", i, findings[i].Code, want)
		}
	}
}

func TestValidateFields_UnknownColumns(t *testing.T) {
	table := &Table{
		Role:    RoleSpecimen,
		Columns: []string{"unit_id", "color", "sex", "color"},
		Rows: []Row{
			specimenRow(2, map[string]string{"unit_id": "S1", "color": "red"}),
			specimenRow(3, map[string]string{"unit_id": "S2", "color": "blue"}),
		},
	}

	findings := ValidateFields(table, fieldSpec())
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want one warning for repeated unknown column", findings)
	}
	f := findings[0]
	if f.Code != CodeUnknownColumn || f.Severity != SeverityWarning {
		t.Errorf("finding = %+v, want unknown_column warning", f)
	}
	if f.Column != "color" {
		t.Errorf("Column = %q, want color", f.Column)
	}
	if f.Line != 0 {
		t.Errorf("Line = %d, want 0 for a header finding", f.Line)
	}
}

func TestValidateFields_UnknownColumnsPrecedeRowFindings(t *testing.T) {
	table := &Table{
		Role:    RoleSpecimen,
		Columns: []string{"unit_id", "color"},
		Rows: []Row{
			specimenRow(2, map[string]string{"color": "red"}),
		},
	}

	findings := ValidateFields(table, fieldSpec())
	if len(findings) != 2 {
		t.Fatalf("findings = %v, want 2", findings)
	}
	if findings[0].Code != CodeUnknownColumn || findings[1].Code != CodeMissingRequired {
		t.Errorf("order = %s, %s, want unknown_column then missing_required_value",
			findings[0].Code, findings[1].Code)
	}
}

package core

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	if got := reg.Roles(); len(got) != 3 {
		t.Fatalf("Roles() = %v, want all three", got)
	}

	spec, err := reg.Spec(RoleSpecimen)
	if err != nil {
		t.Fatalf("Spec(specimen) error = %v", err)
	}
	if spec.Key != "unit_id" {
		t.Errorf("specimen key = %q, want unit_id", spec.Key)
	}
	col, ok := spec.Column("unit_id")
	if !ok || !col.Required {
		t.Errorf("specimen unit_id = %+v, want required", col)
	}

	meas, err := reg.Spec(RoleMeasurement)
	if err != nil {
		t.Fatalf("Spec(measurement) error = %v", err)
	}
	ref, ok := meas.Column("unit_id")
	if !ok || ref.Ref == nil {
		t.Fatalf("measurement unit_id = %+v, want cross-reference", ref)
	}
	if ref.Ref.Table != RoleSpecimen || ref.Ref.Column != "unit_id" {
		t.Errorf("measurement unit_id references %s.%s, want specimen.unit_id",
			ref.Ref.Table, ref.Ref.Column)
	}

	multi, err := reg.Spec(RoleMultimedia)
	if err != nil {
		t.Fatalf("Spec(multimedia) error = %v", err)
	}
	if subj, ok := multi.Column("subject_id"); !ok || subj.Ref == nil || subj.Ref.Table != RoleSpecimen {
		t.Errorf("multimedia subject_id = %+v, want reference to specimen", subj)
	}
}

func TestRegistry_SpecUnknownRole(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.Spec(TableRole("taxon"))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Spec(taxon) error = %v, want *SchemaError", err)
	}
	if schemaErr.Role != "taxon" {
		t.Errorf("Role = %q, want taxon", schemaErr.Role)
	}
}

func TestLoadRegistry_Valid(t *testing.T) {
	doc := `
tables:
  specimen:
    key: unit_id
    columns:
      - name: unit_id
        type: text
        required: true
      - name: sex
        type: enum
        values: [male, female]
  measurement:
    key: measurement_id
    columns:
      - name: measurement_id
        required: true
      - name: unit_id
        references: {table: specimen, column: unit_id}
`
	reg, err := LoadRegistry(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	spec, err := reg.Spec(RoleSpecimen)
	if err != nil {
		t.Fatalf("Spec(specimen) error = %v", err)
	}
	sex, ok := spec.Column("sex")
	if !ok || sex.Type != ColumnEnum || len(sex.EnumValues) != 2 {
		t.Errorf("sex column = %+v, want enum with 2 values", sex)
	}

	// Omitted type defaults to text
	meas, _ := reg.Spec(RoleMeasurement)
	if id, _ := meas.Column("measurement_id"); id.Type != ColumnText {
		t.Errorf("measurement_id type = %v, want text", id.Type)
	}
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "not yaml",
			doc:  "tables: [:::",
		},
		{
			name: "no tables",
			doc:  "tables: {}",
		},
		{
			name: "unknown role",
			doc: `
tables:
  taxon:
    columns:
      - name: id
`,
		},
		{
			name: "unknown column type",
			doc: `
tables:
  specimen:
    columns:
      - name: unit_id
        type: uuid
`,
		},
		{
			name: "enum without values",
			doc: `
tables:
  specimen:
    columns:
      - name: sex
        type: enum
`,
		},
		{
			name: "duplicate column",
			doc: `
tables:
  specimen:
    columns:
      - name: unit_id
      - name: unit_id
`,
		},
		{
			name: "undeclared key column",
			doc: `
tables:
  specimen:
    key: unit_id
    columns:
      - name: collector
`,
		},
		{
			name: "reference to undefined table",
			doc: `
tables:
  measurement:
    columns:
      - name: unit_id
        references: {table: specimen, column: unit_id}
`,
		},
		{
			name: "reference to unknown role",
			doc: `
tables:
  measurement:
    columns:
      - name: unit_id
        references: {table: taxon, column: id}
`,
		},
		{
			name: "reference to undeclared column",
			doc: `
tables:
  specimen:
    columns:
      - name: unit_id
  measurement:
    columns:
      - name: unit_id
        references: {table: specimen, column: other_id}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRegistry(strings.NewReader(tt.doc)); err == nil {
				t.Error("LoadRegistry() = nil error, want failure")
			}
		})
	}
}

func TestNewRegistry_DuplicateRole(t *testing.T) {
	_, err := NewRegistry([]TableSpec{
		{Role: RoleSpecimen, Columns: []ColumnSpec{{Name: "unit_id"}}},
		{Role: RoleSpecimen, Columns: []ColumnSpec{{Name: "unit_id"}}},
	})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("NewRegistry() error = %v, want *SchemaError", err)
	}
}

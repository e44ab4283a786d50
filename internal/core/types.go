// Package core implements the ABCD validation engine: loading delimited
// specimen, measurement and multimedia tables, checking them against a
// declarative column ruleset, and producing an ordered report of findings.
// This package has no UI dependencies and can be used by any frontend.
package core

import "strings"

// TableRole identifies one of the three input tables of a validation run.
type TableRole string

const (
	RoleSpecimen    TableRole = "specimen"
	RoleMeasurement TableRole = "measurement"
	RoleMultimedia  TableRole = "multimedia"
)

// Roles returns all table roles in their canonical report order.
func Roles() []TableRole {
	return []TableRole{RoleSpecimen, RoleMeasurement, RoleMultimedia}
}

// roleOrder returns the sort rank of a role for report ordering.
// Unknown roles sort last so a malformed finding never panics the sort.
func roleOrder(r TableRole) int {
	switch r {
	case RoleSpecimen:
		return 0
	case RoleMeasurement:
		return 1
	case RoleMultimedia:
		return 2
	default:
		return 3
	}
}

// ParseRole converts a string to a TableRole.
// Returns false if the string names no known role.
func ParseRole(s string) (TableRole, bool) {
	switch TableRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSpecimen:
		return RoleSpecimen, true
	case RoleMeasurement:
		return RoleMeasurement, true
	case RoleMultimedia:
		return RoleMultimedia, true
	default:
		return "", false
	}
}

// ColumnType represents the expected data type for a table column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnDecimal
	ColumnDate
	ColumnEnum
)

// String returns the configuration-file name of the column type.
func (t ColumnType) String() string {
	switch t {
	case ColumnText:
		return "text"
	case ColumnInteger:
		return "integer"
	case ColumnDecimal:
		return "decimal"
	case ColumnDate:
		return "date"
	case ColumnEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// parseColumnType converts a configuration-file type name to a ColumnType.
// An empty name defaults to text.
func parseColumnType(s string) (ColumnType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return ColumnText, true
	case "integer":
		return ColumnInteger, true
	case "decimal":
		return ColumnDecimal, true
	case "date":
		return ColumnDate, true
	case "enum":
		return ColumnEnum, true
	default:
		return ColumnText, false
	}
}

// Reference declares a cross-table constraint: values of the column
// carrying the reference must appear in Column of the Table role.
type Reference struct {
	Table  TableRole
	Column string
}

// ColumnSpec defines the validation rules for a single table column.
type ColumnSpec struct {
	Name       string     // Column header name (matched case-insensitively)
	Type       ColumnType // Expected data type
	Required   bool       // Cell must be present and non-empty
	EnumValues []string   // Valid values for ColumnEnum type
	Ref        *Reference // Optional cross-table reference constraint
}

// TableSpec defines the full ruleset for one table role.
// Column order is the declared order and fixes finding emission order.
type TableSpec struct {
	Role    TableRole
	Key     string // Primary identifier column, checked for uniqueness
	Columns []ColumnSpec
}

// Column returns the spec for a column by name, matched case-insensitively.
func (s TableSpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Row is one data row of a loaded table. Cells maps lowercased column
// names to raw cell text; a column missing from the source row has no
// key at all, as opposed to an empty string. Rows are never mutated
// after load.
type Row struct {
	Line  int // 1-based source line number for diagnostics
	Cells map[string]string
}

// Cell returns the raw text of a named cell and whether it was present.
func (r Row) Cell(name string) (string, bool) {
	v, ok := r.Cells[strings.ToLower(name)]
	return v, ok
}

// Table is one loaded input table. Rows holds only structurally sound
// rows; rows whose field count disagreed with the header are counted in
// Excluded and already reported by the loader. Immutable once loaded.
type Table struct {
	Role     TableRole
	Columns  []string // lowercased header names in source order
	Rows     []Row
	Excluded int // rows dropped for structural errors
}

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding codes emitted by the validators.
const (
	CodeMalformedRow    = "malformed_row"
	CodeMissingRequired = "missing_required_value"
	CodeInvalidType     = "invalid_type"
	CodeInvalidDate     = "invalid_date"
	CodeInvalidEnum     = "invalid_enum_value"
	CodeUnknownColumn   = "unknown_column"
	CodeBrokenReference = "broken_reference"
	CodeDuplicateID     = "duplicate_identifier"
)

// Finding is one validation outcome tied to a location in the input.
// Line 0 and Column "" mean a table-level finding. Findings are value
// objects and never mutated after creation.
type Finding struct {
	Severity Severity  `json:"severity"`
	Table    TableRole `json:"table"`
	Line     int       `json:"line,omitempty"`
	Column   string    `json:"column,omitempty"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
}

// Summary holds per-severity finding counts for a report.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Report is the ordered outcome of one validation run.
// A report with zero errors means the table set is valid.
type Report struct {
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
	Valid    bool      `json:"valid"`
}

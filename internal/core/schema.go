package core

// schema.go provides the schema registry: the declarative ruleset the
// validators run against. Rulesets are data, not code - they are loaded
// from a YAML document (or the embedded default) so that a new ABCD
// schema version is a configuration change.

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed abcd.yaml
var defaultSchemaYAML []byte

// SchemaError reports a fatal problem with the active ruleset, such as
// a request for a table role the ruleset does not define.
type SchemaError struct {
	Role   TableRole
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("schema: %s: %s", e.Role, e.Reason)
	}
	return fmt.Sprintf("schema: %s", e.Reason)
}

// Registry holds the column specs for every table role of a run.
// It is constructed once, injected into the pipeline, and read-only
// afterwards, so lookups need no locking.
type Registry struct {
	specs map[TableRole]TableSpec
}

// NewRegistry builds a registry from explicit table specs and verifies
// their internal consistency: distinct column names, declared key
// columns, enum value sets, and resolvable cross-references.
func NewRegistry(specs []TableSpec) (*Registry, error) {
	reg := &Registry{specs: make(map[TableRole]TableSpec, len(specs))}
	for _, spec := range specs {
		if _, ok := ParseRole(string(spec.Role)); !ok {
			return nil, &SchemaError{Role: spec.Role, Reason: "unknown table role"}
		}
		if _, dup := reg.specs[spec.Role]; dup {
			return nil, &SchemaError{Role: spec.Role, Reason: "table role defined twice"}
		}
		seen := make(map[string]bool, len(spec.Columns))
		for _, col := range spec.Columns {
			name := strings.ToLower(strings.TrimSpace(col.Name))
			if name == "" {
				return nil, &SchemaError{Role: spec.Role, Reason: "column with empty name"}
			}
			if seen[name] {
				return nil, &SchemaError{Role: spec.Role, Reason: fmt.Sprintf("column %q defined twice", col.Name)}
			}
			seen[name] = true
			if col.Type == ColumnEnum && len(col.EnumValues) == 0 {
				return nil, &SchemaError{Role: spec.Role, Reason: fmt.Sprintf("enum column %q has no values", col.Name)}
			}
		}
		if spec.Key != "" && !seen[strings.ToLower(spec.Key)] {
			return nil, &SchemaError{Role: spec.Role, Reason: fmt.Sprintf("key column %q not declared", spec.Key)}
		}
		reg.specs[spec.Role] = spec
	}

	// References can only be checked once all specs are registered.
	for _, spec := range reg.specs {
		for _, col := range spec.Columns {
			if col.Ref == nil {
				continue
			}
			target, ok := reg.specs[col.Ref.Table]
			if !ok {
				return nil, &SchemaError{Role: spec.Role, Reason: fmt.Sprintf(
					"column %q references undefined table %q", col.Name, col.Ref.Table)}
			}
			if _, ok := target.Column(col.Ref.Column); !ok {
				return nil, &SchemaError{Role: spec.Role, Reason: fmt.Sprintf(
					"column %q references undeclared column %s.%s", col.Name, col.Ref.Table, col.Ref.Column)}
			}
		}
	}
	return reg, nil
}

// Spec returns the table spec for a role.
// Returns a *SchemaError if the registry defines no spec for the role.
func (reg *Registry) Spec(role TableRole) (TableSpec, error) {
	spec, ok := reg.specs[role]
	if !ok {
		return TableSpec{}, &SchemaError{Role: role, Reason: "no specification for table role"}
	}
	return spec, nil
}

// Roles returns the roles defined by this registry in canonical order.
func (reg *Registry) Roles() []TableRole {
	var roles []TableRole
	for _, role := range Roles() {
		if _, ok := reg.specs[role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// schemaFile mirrors the YAML ruleset document layout.
type schemaFile struct {
	Tables map[string]schemaTable `yaml:"tables"`
}

type schemaTable struct {
	Key     string         `yaml:"key"`
	Columns []schemaColumn `yaml:"columns"`
}

type schemaColumn struct {
	Name       string           `yaml:"name"`
	Type       string           `yaml:"type"`
	Required   bool             `yaml:"required"`
	Values     []string         `yaml:"values"`
	References *schemaReference `yaml:"references"`
}

type schemaReference struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

// LoadRegistry reads a YAML ruleset document and builds a registry.
func LoadRegistry(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, &SchemaError{Reason: "ruleset defines no tables"}
	}

	var specs []TableSpec
	// Walk roles in canonical order so error reporting is stable.
	for _, role := range Roles() {
		table, ok := file.Tables[string(role)]
		if !ok {
			continue
		}
		spec := TableSpec{Role: role, Key: strings.ToLower(strings.TrimSpace(table.Key))}
		for _, col := range table.Columns {
			colType, ok := parseColumnType(col.Type)
			if !ok {
				return nil, &SchemaError{Role: role, Reason: fmt.Sprintf(
					"column %q has unknown type %q", col.Name, col.Type)}
			}
			cs := ColumnSpec{
				Name:     strings.ToLower(strings.TrimSpace(col.Name)),
				Type:     colType,
				Required: col.Required,
			}
			for _, v := range col.Values {
				cs.EnumValues = append(cs.EnumValues, strings.TrimSpace(v))
			}
			if col.References != nil {
				refRole, ok := ParseRole(col.References.Table)
				if !ok {
					return nil, &SchemaError{Role: role, Reason: fmt.Sprintf(
						"column %q references unknown table %q", col.Name, col.References.Table)}
				}
				cs.Ref = &Reference{
					Table:  refRole,
					Column: strings.ToLower(strings.TrimSpace(col.References.Column)),
				}
			}
			spec.Columns = append(spec.Columns, cs)
		}
		specs = append(specs, spec)
	}
	for name := range file.Tables {
		if _, ok := ParseRole(name); !ok {
			return nil, &SchemaError{Reason: fmt.Sprintf("unknown table role %q in ruleset", name)}
		}
	}

	return NewRegistry(specs)
}

// DefaultRegistry returns the registry built from the embedded ABCD
// ruleset. The embedded document is compiled in and verified by tests,
// so a parse failure here is a programming error.
func DefaultRegistry() *Registry {
	reg, err := LoadRegistry(bytes.NewReader(defaultSchemaYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded ruleset invalid: %v", err))
	}
	return reg
}

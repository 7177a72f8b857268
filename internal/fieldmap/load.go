package fieldmap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"wlrecon/internal/loader"
	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// Mapping table columns
const (
	CCPColumn     = "ccp_column"
	ATColumn      = "at_column"
	ExcludeColumn = "exclude"
)

// ErrEmptyMapping is returned when a mapping source holds no entries
var ErrEmptyMapping = errors.New("mapping has no entries")

// File is the YAML layout of a mapping file
type File struct {
	Entries []reconcile.FieldPair `yaml:"entries"`
	Exclude []string              `yaml:"exclude"`
}

// FromTable builds a mapping from a ccp_column / at_column table. A blank
// at_column marks a CCP-only field. When an exclude column is present, rows
// with a truthy value add their CCP field to the exclusion set. The default
// exclusions always apply.
func FromTable(t domain.Table) (*reconcile.MappingTable, error) {
	t = reconcile.NormalizeColumns(t)
	for _, col := range []string{CCPColumn, ATColumn} {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("mapping %s: %s column not found (available: %s)", t.Name, col, strings.Join(t.Columns, ", "))
		}
	}

	excluded := append([]string{}, reconcile.DefaultExcludedFields...)
	entries := make([]reconcile.FieldPair, 0, t.Len())
	hasExclude := t.HasColumn(ExcludeColumn)

	for i := 0; i < t.Len(); i++ {
		ccp := t.Value(i, CCPColumn)
		if ccp.IsNull() {
			continue
		}
		pair := reconcile.FieldPair{CCP: ccp.Trimmed().String(), AT: t.Value(i, ATColumn).Trimmed().String()}
		entries = append(entries, pair)
		if hasExclude && truthy(t.Value(i, ExcludeColumn)) {
			excluded = append(excluded, pair.CCP)
		}
	}

	m := reconcile.NewMappingTable(entries, excluded)
	if m.Len() == 0 {
		return nil, fmt.Errorf("mapping %s: %w", t.Name, ErrEmptyMapping)
	}
	return m, nil
}

// ParseYAML decodes a YAML mapping document
func ParseYAML(data []byte) (*reconcile.MappingTable, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}
	excluded := append(append([]string{}, reconcile.DefaultExcludedFields...), f.Exclude...)
	m := reconcile.NewMappingTable(f.Entries, excluded)
	if m.Len() == 0 {
		return nil, ErrEmptyMapping
	}
	return m, nil
}

// LoadFile reads a mapping from a YAML file or a spreadsheet
func LoadFile(path string) (*reconcile.MappingTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping file: %w", err)
		}
		m, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return m, nil
	default:
		t, err := loader.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return FromTable(t)
	}
}

func truthy(v domain.Value) bool {
	switch strings.ToLower(v.Trimmed().String()) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}

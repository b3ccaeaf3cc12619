package schema

import (
	"errors"
	"strings"
)

// ErrUnavailable is returned whenever a snapshot could not be produced.
var ErrUnavailable = errors.New("schema unavailable")

type Column struct {
	Name     string  `json:"name"`
	DataType string  `json:"data_type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default,omitempty"`
}

// Requirement labels the column the way the schema browser shows it.
func (c Column) Requirement() string {
	if c.Nullable {
		return "Optional"
	}
	return "Required"
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Snapshot is an immutable description of the tables in one database.
// Tables keep catalog order.
type Snapshot struct {
	DatabaseName string  `json:"database_name"`
	Tables       []Table `json:"tables"`
}

func (s Snapshot) Table(name string) (Table, bool) {
	for _, table := range s.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return Table{}, false
}

func (s Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, table := range s.Tables {
		names = append(names, table.Name)
	}
	return names
}

// Filter keeps the tables whose name contains term, ignoring case.
// An empty term returns the snapshot unchanged.
func (s Snapshot) Filter(term string) Snapshot {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s
	}
	filtered := Snapshot{DatabaseName: s.DatabaseName, Tables: make([]Table, 0, len(s.Tables))}
	for _, table := range s.Tables {
		if strings.Contains(strings.ToLower(table.Name), term) {
			filtered.Tables = append(filtered.Tables, table)
		}
	}
	return filtered
}

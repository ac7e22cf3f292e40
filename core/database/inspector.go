package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // NULL defaults are possible
	Extra   string
}

// ColumnMismatch reports one expected column that is missing or has another type.
type ColumnMismatch struct {
	Column   string `json:"column"`
	Expected string `json:"expected"`
	Actual   string `json:"actual,omitempty"`
	Missing  bool   `json:"missing"`
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string `gorm:"column:dflt_value"`
			Pk         int
		}
		var sqliteCols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			info := ColumnInfo{
				Field:   strings.ToLower(col.Name),
				Type:    strings.ToLower(col.Type),
				Null:    "YES",
				Default: col.DefaultVal,
			}
			if col.Notnull != 0 {
				info.Null = "NO"
			}
			if col.Pk != 0 {
				info.Key = "PRI"
			}
			columns = append(columns, info)
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// CompareColumns checks actual against expected (column name to type prefix, e.g.
// "varchar" matches "varchar(255)"). Extra columns are ignored. Results are sorted by column.
func CompareColumns(actual []ColumnInfo, expected map[string]string) []ColumnMismatch {
	byName := make(map[string]string, len(actual))
	for _, c := range actual {
		byName[c.Field] = c.Type
	}

	var mismatches []ColumnMismatch
	for name, want := range expected {
		got, ok := byName[strings.ToLower(name)]
		switch {
		case !ok:
			mismatches = append(mismatches, ColumnMismatch{Column: name, Expected: want, Missing: true})
		case !strings.HasPrefix(got, strings.ToLower(want)):
			mismatches = append(mismatches, ColumnMismatch{Column: name, Expected: want, Actual: got})
		}
	}
	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Column < mismatches[j].Column })
	return mismatches
}

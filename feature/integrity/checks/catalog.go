package checks

import (
	"context"

	"texture-manager/core/database"
)

// SchemaVerifier compares a live table with its model.
type SchemaVerifier interface {
	VerifySchema(ctx context.Context) ([]database.ColumnMismatch, error)
}

// CatalogReport is the result of a catalog schema check.
type CatalogReport struct {
	Configured bool                      `json:"configured"`
	Matched    bool                      `json:"matched"`
	Mismatches []database.ColumnMismatch `json:"mismatches"`
}

// CheckCatalog verifies the catalog table. A nil verifier reports an unconfigured
// catalog, which is not an error.
func CheckCatalog(ctx context.Context, v SchemaVerifier) (*CatalogReport, error) {
	report := &CatalogReport{Mismatches: []database.ColumnMismatch{}}
	if v == nil {
		return report, nil
	}
	report.Configured = true

	mismatches, err := v.VerifySchema(ctx)
	if err != nil {
		return nil, err
	}
	if len(mismatches) > 0 {
		report.Mismatches = mismatches
	}
	report.Matched = len(mismatches) == 0
	return report, nil
}

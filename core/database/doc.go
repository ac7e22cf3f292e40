// Package database handles the texture catalog database connection and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections from the
// application's configuration.
//
// # Connect
//
// Connect opens the configured driver and pings it. The catalog is optional: the texture
// manager runs without it and the catalog routes are disabled.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns (SHOW COLUMNS on MySQL, PRAGMA table_info on
// SQLite) so the catalog can verify that the live schema matches its model.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Catalog disabled", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "texture_assets")
package database

// Package catalog stores texture asset metadata in the catalog database.
//
// Each row of texture_assets names a storage object, the color space it is sampled in,
// its dimensions and whether it belongs to the startup preload set. The repository is
// GORM based and works on MySQL and SQLite.
//
// # Schema Verification
//
// VerifySchema compares the live table with the model, using the column inspector in
// core/database.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	assets, err := repo.PreloadSet(ctx)
//	for _, a := range assets {
//	    cs, _ := a.Space()
//	    manager.PreloadTexture(ctx, a.Descriptor(), cs, nil, false)
//	}
package catalog

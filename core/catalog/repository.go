package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"texture-manager/core/database"
	"texture-manager/core/texture"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no catalog row matches.
	ErrNotFound = errors.New("catalog: texture asset not found")
	// ErrInvalidAsset is returned by Upsert for rows that cannot be stored.
	ErrInvalidAsset = errors.New("catalog: invalid texture asset")
)

// Filter narrows List results.
type Filter struct {
	// Prefix matches the start of the object name.
	Prefix string
	// PreloadOnly restricts results to the preload set.
	PreloadOnly bool
	// Limit caps the result size when positive.
	Limit int
}

// Repository reads and writes texture assets.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the texture_assets table.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&TextureAsset{}); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

// List returns assets ordered by descending priority, then object name.
func (r *Repository) List(ctx context.Context, f Filter) ([]TextureAsset, error) {
	q := r.db.WithContext(ctx).Model(&TextureAsset{})
	if f.PreloadOnly {
		q = q.Where("preload = ?", true)
	}
	if f.Prefix != "" {
		q = q.Where("object LIKE ?", f.Prefix+"%")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var assets []TextureAsset
	if err := q.Order("priority DESC").Order("object").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return assets, nil
}

// PreloadSet returns the assets to preload at startup, highest priority first.
func (r *Repository) PreloadSet(ctx context.Context) ([]TextureAsset, error) {
	return r.List(ctx, Filter{PreloadOnly: true})
}

// Get returns the asset for object.
func (r *Repository) Get(ctx context.Context, object string) (*TextureAsset, error) {
	var a TextureAsset
	err := r.db.WithContext(ctx).Where("object = ?", object).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, object)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", object, err)
	}
	return &a, nil
}

// Upsert inserts a, or updates the existing row with the same object.
func (r *Repository) Upsert(ctx context.Context, a *TextureAsset) error {
	if strings.TrimSpace(a.Object) == "" {
		return fmt.Errorf("%w: empty object", ErrInvalidAsset)
	}
	cs, err := texture.ParseColorSpace(a.ColorSpace)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAsset, err)
	}
	a.ColorSpace = cs.String()

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "object"}},
		DoUpdates: clause.AssignmentColumns([]string{"color_space", "width", "height", "mip_levels", "priority", "preload"}),
	}).Create(a).Error
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", a.Object, err)
	}
	return nil
}

// Delete removes the row for object.
func (r *Repository) Delete(ctx context.Context, object string) error {
	res := r.db.WithContext(ctx).Where("object = ?", object).Delete(&TextureAsset{})
	if res.Error != nil {
		return fmt.Errorf("catalog: delete %s: %w", object, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, object)
	}
	return nil
}

// DeleteBatch removes the rows for objects in one statement. Unknown objects are ignored.
func (r *Repository) DeleteBatch(ctx context.Context, objects []string) (int64, error) {
	if len(objects) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("object IN ?", objects).Delete(&TextureAsset{})
	if res.Error != nil {
		return 0, fmt.Errorf("catalog: delete batch: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// VerifySchema compares the live texture_assets table with the model. A missing table
// reports every column as missing.
func (r *Repository) VerifySchema(ctx context.Context) ([]database.ColumnMismatch, error) {
	columns, err := database.GetTableColumns(r.db.WithContext(ctx), TextureAsset{}.TableName())
	if err != nil {
		return nil, err
	}
	return database.CompareColumns(columns, expectedColumns(r.db.Dialector.Name())), nil
}

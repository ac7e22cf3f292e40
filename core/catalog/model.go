package catalog

import (
	"texture-manager/core/asset"
	"texture-manager/core/texture"
)

// TextureAsset represents the 'texture_assets' table.
type TextureAsset struct {
	ID         uint   `gorm:"column:id;primaryKey" json:"id"`
	Object     string `gorm:"column:object;size:255;not null;uniqueIndex" json:"object"`
	ColorSpace string `gorm:"column:color_space;size:16;not null;default:srgb" json:"color_space"`
	Width      int    `gorm:"column:width" json:"width"`
	Height     int    `gorm:"column:height" json:"height"`
	MipLevels  int    `gorm:"column:mip_levels" json:"mip_levels"`
	Priority   int    `gorm:"column:priority;not null;default:0" json:"priority"`
	Preload    bool   `gorm:"column:preload;not null;default:false" json:"preload"`
}

// TableName overrides the table name.
func (TextureAsset) TableName() string {
	return "texture_assets"
}

// Descriptor returns the asset as texture manager input.
func (a TextureAsset) Descriptor() asset.Descriptor {
	return asset.Descriptor{
		Object: a.Object,
		Width:  a.Width,
		Height: a.Height,
		Levels: a.MipLevels,
	}
}

// Space parses the stored color space.
func (a TextureAsset) Space() (texture.ColorSpace, error) {
	return texture.ParseColorSpace(a.ColorSpace)
}

// expectedColumns maps each column to the type prefix AutoMigrate creates on dialect.
func expectedColumns(dialect string) map[string]string {
	if dialect == "sqlite" {
		return map[string]string{
			"id":          "integer",
			"object":      "text",
			"color_space": "text",
			"width":       "integer",
			"height":      "integer",
			"mip_levels":  "integer",
			"priority":    "integer",
			"preload":     "numeric",
		}
	}
	return map[string]string{
		"id":          "bigint",
		"object":      "varchar",
		"color_space": "varchar",
		"width":       "bigint",
		"height":      "bigint",
		"mip_levels":  "bigint",
		"priority":    "bigint",
		"preload":     "tinyint",
	}
}

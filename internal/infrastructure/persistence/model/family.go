package model

type Family struct {
	ID                uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Category          string `gorm:"column:category;type:text;not null;uniqueIndex:idx_families_identity,priority:1"`
	Brand             string `gorm:"column:brand;type:text;not null;uniqueIndex:idx_families_identity,priority:2"`
	Name              string `gorm:"column:name;type:text;not null;uniqueIndex:idx_families_identity,priority:3"`
	DisplayName       string `gorm:"column:display_name;type:text;not null"`
	MinImagesRequired int    `gorm:"column:min_images_required;not null;default:15"`
	Status            string `gorm:"column:status;type:text;not null;default:building"`
	AttributesJSON    string `gorm:"column:attributes_json;type:text;not null;default:''"`
	CreatedAt         string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt         string `gorm:"column:updated_at;type:text;not null"`
}

func (Family) TableName() string {
	return "families"
}

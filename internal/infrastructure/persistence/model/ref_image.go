package model

type RefImage struct {
	ID            string   `gorm:"column:id;type:text;primaryKey"`
	FamilyID      uint64   `gorm:"column:family_id;not null;index"`
	SHA256        string   `gorm:"column:sha256;type:text;not null;uniqueIndex"`
	StoragePath   string   `gorm:"column:storage_path;type:text;not null"`
	OriginalURL   string   `gorm:"column:original_url;type:text;not null"`
	FileSize      int64    `gorm:"column:file_size;not null"`
	Width         int      `gorm:"column:width;not null"`
	Height        int      `gorm:"column:height;not null"`
	ContentType   string   `gorm:"column:content_type;type:text;not null"`
	EmbeddingJSON *string  `gorm:"column:embedding_json;type:text"`
	Source        string   `gorm:"column:source;type:text;not null"`
	QualityScore  *float64 `gorm:"column:quality_score"`
	CreatedAt     string   `gorm:"column:created_at;type:text;not null"`
}

func (RefImage) TableName() string {
	return "ref_images"
}

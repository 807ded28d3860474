package model

type QueueItem struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	FamilyID     uint64  `gorm:"column:family_id;not null;uniqueIndex:idx_queue_family_url,priority:1"`
	SourceURL    string  `gorm:"column:source_url;type:text;not null;uniqueIndex:idx_queue_family_url,priority:2"`
	Status       string  `gorm:"column:status;type:text;not null;default:pending;index"`
	RetryCount   int     `gorm:"column:retry_count;not null;default:0"`
	ErrorMessage string  `gorm:"column:error_message;type:text;not null;default:''"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null;index"`
	ClaimedAt    *string `gorm:"column:claimed_at;type:text"`
	ProcessedAt  *string `gorm:"column:processed_at;type:text"`
}

func (QueueItem) TableName() string {
	return "queue_items"
}

package models

import "time"

// Collection names used by MediaAsset.
const (
	CollectionCover = "cover"
)

// MediaAsset is a stored file attached to a model (polymorphic owner).
// A model owns at most one asset per collection.
type MediaAsset struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ModelType  string    `json:"model_type" gorm:"size:100;not null;uniqueIndex:uniq_media_owner_collection"`
	ModelID    uint      `json:"model_id" gorm:"not null;uniqueIndex:uniq_media_owner_collection"`
	Collection string    `json:"collection" gorm:"size:100;not null;uniqueIndex:uniq_media_owner_collection"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	Path       string    `json:"path" gorm:"size:500;not null"`
	MimeType   string    `json:"mime_type" gorm:"size:100"`
	Size       int64     `json:"size"`
	SourceURL  string    `json:"source_url" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}

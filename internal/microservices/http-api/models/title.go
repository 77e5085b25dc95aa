package models

import (
	"time"

	"gorm.io/gorm"
)

// Title is an encyclopedia entry for one anime, manga or related work.
// Slug is unique per type; the index lives in the database so concurrent
// imports cannot create duplicates.
type Title struct {
	gorm.Model
	Name        string     `json:"name" gorm:"size:255;not null"`
	Slug        string     `json:"slug" gorm:"size:255;not null;uniqueIndex:uniq_titles_slug_type"`
	OtherTitles string     `json:"other_titles" gorm:"type:text"`
	Sinopsis    string     `json:"sinopsis" gorm:"type:text"`
	TrailerURL  string     `json:"trailer_url" gorm:"column:trailer_url;size:500"`
	TypeID      uint       `json:"type_id" gorm:"not null;uniqueIndex:uniq_titles_slug_type"`
	RatingID    *uint      `json:"rating_id,omitempty"`
	Status      string     `json:"status" gorm:"size:50"`
	Episodies   *int       `json:"episodies,omitempty"`
	BroadTime   *time.Time `json:"broad_time,omitempty" gorm:"type:date"`
	BroadFinish *time.Time `json:"broad_finish,omitempty" gorm:"type:date"`
	MalID       *int       `json:"mal_id,omitempty" gorm:"column:mal_id;index"`

	// associations
	Type   *TitleType  `json:"type,omitempty" gorm:"foreignKey:TypeID"`
	Genres []Genre     `json:"genres,omitempty" gorm:"many2many:title_genre;constraint:OnDelete:CASCADE;"`
	Cover  *MediaAsset `json:"cover,omitempty" gorm:"polymorphic:Model;polymorphicValue:titles"`
}

func (Title) TableName() string {
	return "titles"
}

// GenreIDs returns the ids of the attached genres in attachment order.
func (t *Title) GenreIDs() []uint {
	ids := make([]uint, 0, len(t.Genres))
	for _, g := range t.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// TitleType is the media kind of a title (TV, manga, movie...).
type TitleType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null"`
	Slug string `json:"slug" gorm:"size:100;uniqueIndex;not null"`
}

func (TitleType) TableName() string {
	return "title_types"
}

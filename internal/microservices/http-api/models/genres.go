package models

type Genre struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null"`
	Slug string `json:"slug" gorm:"size:100;uniqueIndex;not null"`
}

func (Genre) TableName() string {
	return "genres"
}

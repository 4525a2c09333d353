package entity

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Desc      string    `gorm:"column:description;type:text" json:"desc"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (c *Category) Ref() *CategoryRef {
	if c == nil || c.ID == 0 {
		return nil
	}
	return &CategoryRef{ID: c.ID, Name: c.Name}
}

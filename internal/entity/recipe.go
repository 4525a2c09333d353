package entity

import "time"

type Recipe struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Title           string    `gorm:"size:100;not null" json:"title"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	Ingredients     string    `gorm:"type:text;not null" json:"ingredients"`
	Instructions    string    `gorm:"type:text;not null" json:"instructions"`
	CookingTime     int       `gorm:"not null" json:"cooking_time"`
	ServingSize     int       `gorm:"not null" json:"serving_size"`
	DifficultyLevel string    `gorm:"size:20;not null" json:"difficulty_level"`
	CategoryID      uint      `gorm:"not null;index" json:"category_id"`
	Category        Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ImageURL        *string   `gorm:"type:text" json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type RecipeRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func (r *Recipe) Ref() *RecipeRef {
	if r == nil || r.ID == 0 {
		return nil
	}
	return &RecipeRef{ID: r.ID, Title: r.Title}
}

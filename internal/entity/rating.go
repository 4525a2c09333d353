package entity

import "time"

const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// Rating is unique per (recipe, user).
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_ratings_recipe_user,priority:1" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_recipe_user,priority:2;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

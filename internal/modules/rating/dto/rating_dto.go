package dto

import (
	"math"
	"strconv"
	"time"

	"anoa.com/recipehub/internal/entity"
)

type SubmitRatingRequest struct {
	RecipeID uint `json:"recipe_id" binding:"required"`
	Value    int  `json:"value"`
}

type UpdateRatingRequest struct {
	Value int `json:"value"`
}

// Average is a mean rating rounded to two decimals. It marshals as 0 when
// there are no ratings and with exactly two decimals otherwise.
type Average float64

func NewAverage(v float64) Average {
	return Average(math.Round(v*100) / 100)
}

func (a Average) MarshalJSON() ([]byte, error) {
	if a == 0 {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(float64(a), 'f', 2, 64)), nil
}

type RatingResponse struct {
	ID        uint               `json:"id"`
	Value     int                `json:"value"`
	RecipeID  uint               `json:"recipe_id"`
	UserID    uint               `json:"user_id"`
	Recipe    *entity.RecipeRef  `json:"recipe,omitempty"`
	User      *entity.AuthorView `json:"user,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewRatingResponse(r *entity.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		Value:     r.Value,
		RecipeID:  r.RecipeID,
		UserID:    r.UserID,
		Recipe:    r.Recipe.Ref(),
		User:      r.User.Author(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type SubmitRatingResult struct {
	Rating  RatingResponse `json:"rating"`
	Updated bool           `json:"updated"`
}

type RecipeRatings struct {
	Ratings       []RatingResponse `json:"ratings"`
	AverageRating Average          `json:"average_rating"`
	Count         int64            `json:"count"`
}

type MyRatingResponse struct {
	RecipeID uint            `json:"recipe_id"`
	Rating   *RatingResponse `json:"rating"`
}

package dto

type DashboardResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalRecipes  int64 `json:"total_recipes"`
	TotalComments int64 `json:"total_comments"`
	TotalRatings  int64 `json:"total_ratings"`
}

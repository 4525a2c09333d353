package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/rating/dto"
	"anoa.com/recipehub/internal/modules/rating/repository"
	recipeRepo "anoa.com/recipehub/internal/modules/recipe/repository"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/internal/testutil"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/database"
	"anoa.com/recipehub/pkg/ratelimiter"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    RatingService
	owner  *entity.User
	rater  *entity.User
	recipe *entity.Recipe
}

func setup(t *testing.T) fixture {
	return setupWith(t, nil, func(r repository.RatingRepository) repository.RatingRepository { return r })
}

// setupWith lets a test wrap the rating repository and plug in a limiter.
func setupWith(t *testing.T, limiter *ratelimiter.Limiter, wrap func(repository.RatingRepository) repository.RatingRepository) fixture {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner", entity.RoleUser)
	rater := testutil.CreateUser(t, db, "rater", entity.RoleUser)
	category := testutil.CreateCategory(t, db, "Dessert")
	recipe := testutil.CreateRecipe(t, db, owner, category)

	svc := NewRatingService(
		database.NewTransactionManager(db),
		wrap(repository.NewRatingRepository(db)),
		recipeRepo.NewRecipeRepository(db),
		limiter,
	)
	return fixture{db: db, svc: svc, owner: owner, rater: rater, recipe: recipe}
}

func redisLimiter(t *testing.T, cooldown time.Duration) *ratelimiter.Limiter {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return ratelimiter.New(rdb, cooldown)
}

// scriptedRatings misses the first staleReads lookups and fails the first failCreates inserts.
// The counters are shared by every WithTx copy.
type scriptedRatings struct {
	repository.RatingRepository
	state *scriptState
}

type scriptState struct {
	staleReads  int
	failCreates int
	creates     int
}

func scripted(state *scriptState) func(repository.RatingRepository) repository.RatingRepository {
	return func(r repository.RatingRepository) repository.RatingRepository {
		return &scriptedRatings{RatingRepository: r, state: state}
	}
}

func (r *scriptedRatings) WithTx(tx *gorm.DB) repository.RatingRepository {
	return &scriptedRatings{RatingRepository: r.RatingRepository.WithTx(tx), state: r.state}
}

func (r *scriptedRatings) FindByRecipeAndUser(ctx context.Context, recipeID, userID uint) (*entity.Rating, error) {
	if r.state.staleReads > 0 {
		r.state.staleReads--
		return nil, apperror.NotFound("rating not found")
	}
	return r.RatingRepository.FindByRecipeAndUser(ctx, recipeID, userID)
}

func (r *scriptedRatings) Create(ctx context.Context, rating *entity.Rating) error {
	r.state.creates++
	if r.state.failCreates > 0 {
		r.state.failCreates--
		return apperror.Internal(errors.New("insert failed"))
	}
	return r.RatingRepository.Create(ctx, rating)
}

func actorOf(u *entity.User) policy.Actor {
	return policy.Actor{ID: u.ID, Email: u.Email, Role: u.Roles}
}

func TestSubmitRating_RejectsOutOfRangeValues(t *testing.T) {
	f := setup(t)

	for _, value := range []int{0, 6, -1} {
		_, err := f.svc.SubmitRating(context.Background(), actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: value})
		assert.ErrorIs(t, err, apperror.ErrValidation, "value %d", value)
	}
	assert.Zero(t, testutil.Count(t, f.db, &entity.Rating{}, ""))
}

func TestSubmitRating_AcceptsEveryValueInRange(t *testing.T) {
	f := setup(t)

	for value := entity.MinRatingValue; value <= entity.MaxRatingValue; value++ {
		res, err := f.svc.SubmitRating(context.Background(), actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: value})
		require.NoError(t, err)
		assert.Equal(t, value, res.Rating.Value)
	}
}

func TestSubmitRating_ForbidsSelfRating(t *testing.T) {
	f := setup(t)

	for value := entity.MinRatingValue; value <= entity.MaxRatingValue; value++ {
		_, err := f.svc.SubmitRating(context.Background(), actorOf(f.owner), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: value})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	}
	assert.Zero(t, testutil.Count(t, f.db, &entity.Rating{}, ""))
}

func TestSubmitRating_UnknownRecipe(t *testing.T) {
	f := setup(t)

	_, err := f.svc.SubmitRating(context.Background(), actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: 999, Value: 3})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSubmitRating_UpsertKeepsSingleRow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 2})
	require.NoError(t, err)
	assert.False(t, first.Updated)

	second, err := f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 5})
	require.NoError(t, err)
	assert.True(t, second.Updated)
	assert.Equal(t, first.Rating.ID, second.Rating.ID)

	assert.Equal(t, int64(1), testutil.Count(t, f.db, &entity.Rating{}, "recipe_id = ? AND user_id = ?", f.recipe.ID, f.rater.ID))

	var stored entity.Rating
	require.NoError(t, f.db.First(&stored, first.Rating.ID).Error)
	assert.Equal(t, 5, stored.Value)
}

func TestAverageRating(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	avg, err := f.svc.AverageRating(ctx, f.recipe.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(avg)
	require.NoError(t, err)
	assert.Equal(t, "0", string(raw))

	other := testutil.CreateUser(t, f.db, "other", entity.RoleUser)
	testutil.CreateRating(t, f.db, f.rater, f.recipe, 3)
	testutil.CreateRating(t, f.db, other, f.recipe, 5)

	avg, err = f.svc.AverageRating(ctx, f.recipe.ID)
	require.NoError(t, err)
	raw, err = json.Marshal(avg)
	require.NoError(t, err)
	assert.Equal(t, "4.00", string(raw))
}

func TestAverageRating_RoundsToTwoDecimals(t *testing.T) {
	f := setup(t)

	second := testutil.CreateUser(t, f.db, "second", entity.RoleUser)
	third := testutil.CreateUser(t, f.db, "third", entity.RoleUser)
	testutil.CreateRating(t, f.db, f.rater, f.recipe, 5)
	testutil.CreateRating(t, f.db, second, f.recipe, 4)
	testutil.CreateRating(t, f.db, third, f.recipe, 4)

	avg, err := f.svc.AverageRating(context.Background(), f.recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.Average(4.33), avg)
}

func TestGetMyRating(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.GetMyRating(ctx, actorOf(f.rater), f.recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Rating)

	testutil.CreateRating(t, f.db, f.rater, f.recipe, 4)

	res, err = f.svc.GetMyRating(ctx, actorOf(f.rater), f.recipe.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Rating)
	assert.Equal(t, 4, res.Rating.Value)
}

func TestUpdateMyRating(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.UpdateMyRating(ctx, actorOf(f.rater), f.recipe.ID, dto.UpdateRatingRequest{Value: 3})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	testutil.CreateRating(t, f.db, f.rater, f.recipe, 1)

	_, err = f.svc.UpdateMyRating(ctx, actorOf(f.rater), f.recipe.ID, dto.UpdateRatingRequest{Value: 9})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	res, err := f.svc.UpdateMyRating(ctx, actorOf(f.rater), f.recipe.ID, dto.UpdateRatingRequest{Value: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Value)
}

func TestDeleteRating_Ownership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rating := testutil.CreateRating(t, f.db, f.rater, f.recipe, 4)
	admin := testutil.CreateUser(t, f.db, "admin", entity.RoleAdmin)

	_, err := f.svc.DeleteRating(ctx, actorOf(f.owner), rating.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.DeleteRating(ctx, actorOf(admin), rating.ID)
	require.NoError(t, err)

	_, err = f.svc.DeleteRating(ctx, actorOf(f.rater), rating.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetRatingsByRecipe(t *testing.T) {
	f := setup(t)

	testutil.CreateRating(t, f.db, f.rater, f.recipe, 5)

	res, err := f.svc.GetRatingsByRecipe(context.Background(), f.recipe.ID)
	require.NoError(t, err)
	require.Len(t, res.Ratings, 1)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, dto.Average(5), res.AverageRating)
	require.NotNil(t, res.Ratings[0].User)
	assert.Equal(t, "rater", res.Ratings[0].User.Username)
}

func TestSubmitRating_InsertRaceRetriesAsUpdate(t *testing.T) {
	// Both the pre-check and the first transactional lookup miss the row another
	// request already inserted, so the insert hits the unique index.
	state := &scriptState{staleReads: 2}
	f := setupWith(t, nil, scripted(state))
	testutil.CreateRating(t, f.db, f.rater, f.recipe, 2)

	res, err := f.svc.SubmitRating(context.Background(), actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 4})
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 4, res.Rating.Value)
	assert.Equal(t, 1, state.creates)

	assert.Equal(t, int64(1), testutil.Count(t, f.db, &entity.Rating{}, "recipe_id = ? AND user_id = ?", f.recipe.ID, f.rater.ID))
	var stored entity.Rating
	require.NoError(t, f.db.Where("recipe_id = ? AND user_id = ?", f.recipe.ID, f.rater.ID).First(&stored).Error)
	assert.Equal(t, 4, stored.Value)
}

func TestSubmitRating_CooldownSkipsUpdates(t *testing.T) {
	f := setupWith(t, redisLimiter(t, 3*time.Second), func(r repository.RatingRepository) repository.RatingRepository { return r })
	ctx := context.Background()

	_, err := f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 3})
	require.NoError(t, err)

	res, err := f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 5})
	require.NoError(t, err)
	assert.True(t, res.Updated)

	var stored entity.Rating
	require.NoError(t, f.db.First(&stored, res.Rating.ID).Error)
	assert.Equal(t, 5, stored.Value)
}

func TestSubmitRating_CooldownLimitsNewRatings(t *testing.T) {
	f := setupWith(t, redisLimiter(t, 3*time.Second), func(r repository.RatingRepository) repository.RatingRepository { return r })
	ctx := context.Background()
	other := testutil.CreateRecipe(t, f.db, f.owner, testutil.CreateCategory(t, f.db, "Beverage"))

	_, err := f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 3})
	require.NoError(t, err)

	_, err = f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: other.ID, Value: 4})
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	assert.Zero(t, testutil.Count(t, f.db, &entity.Rating{}, "recipe_id = ?", other.ID))
}

func TestSubmitRating_FailedInsertReleasesCooldown(t *testing.T) {
	state := &scriptState{failCreates: 1}
	f := setupWith(t, redisLimiter(t, time.Minute), scripted(state))
	ctx := context.Background()

	_, err := f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 3})
	assert.ErrorIs(t, err, apperror.ErrInternal)

	res, err := f.svc.SubmitRating(ctx, actorOf(f.rater), dto.SubmitRatingRequest{RecipeID: f.recipe.ID, Value: 3})
	require.NoError(t, err)
	assert.False(t, res.Updated)
}

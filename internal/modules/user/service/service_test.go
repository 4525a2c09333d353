package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"anoa.com/recipehub/internal/credential"
	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/user/dto"
	"anoa.com/recipehub/internal/modules/user/repository"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/internal/testutil"
	"anoa.com/recipehub/pkg/apperror"
	commonDto "anoa.com/recipehub/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const password = "secret123"

type fixture struct {
	db     *gorm.DB
	repo   repository.UserRepository
	auth   AuthService
	users  UserService
	store  *testutil.FakeStorage
	tokens credential.TokenService
}

func setup(t *testing.T) fixture {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	store := &testutil.FakeStorage{}
	tokens := credential.NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	return fixture{
		db:     db,
		repo:   repo,
		auth:   NewAuthService(repo, credential.NewBcryptHasher(bcrypt.MinCost), tokens),
		users:  NewUserService(repo, store),
		store:  store,
		tokens: tokens,
	}
}

func register(t *testing.T, f fixture, username string) *entity.UserView {
	t.Helper()

	view, err := f.auth.Register(context.Background(), dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return view
}

func login(t *testing.T, f fixture, username string) *dto.AuthResponse {
	t.Helper()

	res, err := f.auth.Login(context.Background(), dto.LoginRequest{Email: username + "@example.com", Password: password})
	require.NoError(t, err)
	return res
}

func TestCheckPassword(t *testing.T) {
	assert.NoError(t, CheckPassword("abcdefg1"))
	assert.ErrorIs(t, CheckPassword("abcdefgh"), apperror.ErrValidation)
	assert.ErrorIs(t, CheckPassword("ABCDEFG1"), apperror.ErrValidation)
	assert.ErrorIs(t, CheckPassword("12345678"), apperror.ErrValidation)
}

func TestRegister(t *testing.T) {
	f := setup(t)

	view, err := f.auth.Register(context.Background(), dto.RegisterRequest{
		Username: " alice ",
		Email:    " Alice@Example.com",
		Password: password,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, entity.RoleUser, view.Roles)

	stored, err := f.repo.FindByIDWithSecrets(context.Background(), view.ID)
	require.NoError(t, err)
	assert.NotEqual(t, password, stored.Password)
}

func TestRegister_Conflicts(t *testing.T) {
	f := setup(t)
	register(t, f, "alice")

	_, err := f.auth.Register(context.Background(), dto.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: password})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorContains(t, err, "email already registered")

	_, err = f.auth.Register(context.Background(), dto.RegisterRequest{Username: "alice", Email: "other@example.com", Password: password})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorContains(t, err, "username already taken")
}

func TestRegister_Validation(t *testing.T) {
	f := setup(t)

	cases := []dto.RegisterRequest{
		{Username: "al", Email: "al@example.com", Password: password},
		{Username: "alice", Email: "not-an-email", Password: password},
		{Username: "alice", Email: "alice@example.com", Password: "short1"},
		{Username: "alice", Email: "alice@example.com", Password: "nodigitshere"},
	}
	for _, req := range cases {
		_, err := f.auth.Register(context.Background(), req)
		assert.ErrorIs(t, err, apperror.ErrValidation, "%+v", req)
	}
	assert.Zero(t, testutil.Count(t, f.db, &entity.User{}, ""))
}

func TestLogin(t *testing.T) {
	f := setup(t)
	view := register(t, f, "alice")

	res := login(t, f, "alice")
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(900), res.ExpiresIn)
	assert.Equal(t, view.ID, res.User.ID)

	claims, err := f.tokens.VerifyAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, view.ID, claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)

	stored, err := f.repo.FindByIDWithSecrets(context.Background(), view.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, credential.HashRefreshToken(res.RefreshToken), *stored.RefreshToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := setup(t)
	register(t, f, "alice")

	_, err := f.auth.Login(context.Background(), dto.LoginRequest{Email: "alice@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = f.auth.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: password})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	assert.Equal(t, "invalid email or password", apperror.PublicMessage(err))
}

func TestRefresh_RotatesAndRejectsReplay(t *testing.T) {
	f := setup(t)
	register(t, f, "alice")
	ctx := context.Background()

	first := login(t, f, "alice")

	second, err := f.auth.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.auth.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	third, err := f.auth.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, third.AccessToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := setup(t)
	register(t, f, "alice")

	res := login(t, f, "alice")
	_, err := f.auth.Refresh(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestLogout_ClearsRefreshToken(t *testing.T) {
	f := setup(t)
	view := register(t, f, "alice")
	ctx := context.Background()

	res := login(t, f, "alice")
	require.NoError(t, f.auth.Logout(ctx, policy.Actor{ID: view.ID, Role: view.Roles}))

	stored, err := f.repo.FindByIDWithSecrets(ctx, view.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)

	_, err = f.auth.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t)
	alice := register(t, f, "alice")
	register(t, f, "bob")
	actor := policy.Actor{ID: alice.ID, Role: alice.Roles}
	ctx := context.Background()

	_, err := f.users.UpdateProfile(ctx, actor, dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	taken := "bob"
	_, err = f.users.UpdateProfile(ctx, actor, dto.UpdateProfileRequest{Username: &taken})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	same := "alice@example.com"
	name := "alicia"
	view, err := f.users.UpdateProfile(ctx, actor, dto.UpdateProfileRequest{Username: &name, Email: &same})
	require.NoError(t, err)
	assert.Equal(t, "alicia", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)
}

func TestUploadProfilePicture_ReplacesPrevious(t *testing.T) {
	f := setup(t)
	alice := register(t, f, "alice")
	actor := policy.Actor{ID: alice.ID, Role: alice.Roles}
	ctx := context.Background()

	first, err := f.users.UploadProfilePicture(ctx, actor, commonDto.ImageFile{Reader: bytes.NewReader(testutil.PNG), FileName: "me.png"})
	require.NoError(t, err)
	require.NotNil(t, first.ProfilePicture)
	assert.Contains(t, *first.ProfilePicture, "profile_pictures")

	second, err := f.users.UploadProfilePicture(ctx, actor, commonDto.ImageFile{Reader: bytes.NewReader(testutil.PNG), FileName: "me2.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{*first.ProfilePicture}, f.store.Deleted)

	profile, err := f.users.GetProfile(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, second.ProfilePicture, profile.ProfilePicture)
}

func TestUploadProfilePicture_RejectsNonImage(t *testing.T) {
	f := setup(t)
	alice := register(t, f, "alice")

	_, err := f.users.UploadProfilePicture(context.Background(), policy.Actor{ID: alice.ID, Role: alice.Roles},
		commonDto.ImageFile{Reader: bytes.NewReader([]byte("plain text, not an image")), FileName: "notes.txt"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, f.store.Uploaded)
}

func TestListUsers_ExcludesAdmins(t *testing.T) {
	f := setup(t)
	register(t, f, "alice")
	testutil.CreateUser(t, f.db, "root", entity.RoleAdmin)

	users, err := f.users.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/recipehub/internal/credential"
	"anoa.com/recipehub/internal/entity"
	userRepo "anoa.com/recipehub/internal/modules/user/repository"
	"anoa.com/recipehub/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	router *gin.Engine
	tokens credential.TokenService
	user   *entity.User
	admin  *entity.User
}

func setupAuth(t *testing.T) authFixture {
	db := testutil.NewDB(t)
	tokens := credential.NewJWTService("access-secret", "refresh-secret", time.Minute, time.Hour)
	auth := NewAuthMiddleware(userRepo.NewUserRepository(db), tokens)

	router := gin.New()
	router.Use(RequestID())
	protected := router.Group("", auth.RequireAuth())
	protected.GET("/me", func(c *gin.Context) {
		actor, err := CurrentActor(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	protected.GET("/admin", auth.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return authFixture{
		router: router,
		tokens: tokens,
		user:   testutil.CreateUser(t, db, "alice", entity.RoleUser),
		admin:  testutil.CreateUser(t, db, "root", entity.RoleAdmin),
	}
}

func (f authFixture) do(t *testing.T, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f authFixture) bearer(t *testing.T, u *entity.User) string {
	t.Helper()

	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)
	return "Bearer " + token.Value
}

func TestRequireAuth(t *testing.T) {
	f := setupAuth(t)

	w := f.do(t, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = f.do(t, "/me", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)

	refresh, err := f.tokens.IssueRefreshToken(f.user)
	require.NoError(t, err)
	w = f.do(t, "/me", "Bearer "+refresh.Value)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, "/me", f.bearer(t, f.user))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"role":"user"}`, w.Body.String())
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	f := setupAuth(t)

	ghost := &entity.User{ID: 999, Email: "ghost@example.com", Roles: entity.RoleUser}
	w := f.do(t, "/me", f.bearer(t, ghost))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	f := setupAuth(t)

	w := f.do(t, "/admin", f.bearer(t, f.user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, "/admin", f.bearer(t, f.admin))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireAdmin_UsesStoredRole(t *testing.T) {
	f := setupAuth(t)

	// A token minted with an admin role for a regular user is not enough.
	forged := *f.user
	forged.Roles = entity.RoleAdmin
	w := f.do(t, "/admin", f.bearer(t, &forged))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestID_PropagatesIncomingHeader(t *testing.T) {
	f := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

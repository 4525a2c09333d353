package credential

import (
	"testing"
	"time"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testUser() *entity.User {
	return &entity.User{ID: 42, Email: "cook@example.com", Roles: entity.RoleUser}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, h.Check("secret123", hash))
	assert.False(t, h.Check("secret124", hash))
	assert.False(t, h.Check("secret123", "not-a-hash"))
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("access", "refresh", time.Hour, 7*24*time.Hour)

	access, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(testUser())
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(access.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "cook@example.com", claims.Email)
	assert.Equal(t, entity.RoleUser, claims.Role)
	assert.Equal(t, AccessToken, claims.Type)
	assert.WithinDuration(t, time.Now().Add(time.Hour), access.ExpiresAt, 5*time.Second)

	claims, err = svc.VerifyRefreshToken(refresh.Value)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.Type)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refresh.ExpiresAt, 5*time.Second)
}

func TestJWTService_TokensAreUniquePerIssue(t *testing.T) {
	svc := NewJWTService("access", "refresh", time.Hour, time.Hour)

	first, err := svc.IssueRefreshToken(testUser())
	require.NoError(t, err)
	second, err := svc.IssueRefreshToken(testUser())
	require.NoError(t, err)

	assert.NotEqual(t, first.Value, second.Value)
}

func TestJWTService_RejectsWrongType(t *testing.T) {
	svc := NewJWTService("shared", "shared", time.Hour, time.Hour)

	refresh, err := svc.IssueRefreshToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(refresh.Value)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("access", "refresh", time.Hour, time.Hour)
	verifier := NewJWTService("other", "refresh", time.Hour, time.Hour)

	access, err := issuer.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(access.Value)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = verifier.VerifyAccessToken("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("access", "refresh", -time.Minute, time.Hour)

	access, err := svc.IssueAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(access.Value)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewJWTService("access", "refresh", time.Hour, time.Hour)

	claims := Claims{UserID: 1, Type: AccessToken, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHashRefreshToken(t *testing.T) {
	assert.Equal(t, HashRefreshToken("abc"), HashRefreshToken("abc"))
	assert.NotEqual(t, HashRefreshToken("abc"), HashRefreshToken("abd"))
	assert.Len(t, HashRefreshToken("abc"), 64)
}

package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	ErrTokenExpired = apperror.Unauthenticated("token expired")
	ErrTokenInvalid = apperror.Unauthenticated("invalid token")
)

type Claims struct {
	UserID uint        `json:"id"`
	Email  string      `json:"email"`
	Role   entity.Role `json:"role"`
	Type   TokenType   `json:"type"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	ExpiresAt time.Time
}

type TokenService interface {
	IssueAccessToken(user *entity.User) (Token, error)
	IssueRefreshToken(user *entity.User) (Token, error)
	VerifyAccessToken(token string) (*Claims, error)
	VerifyRefreshToken(token string) (*Claims, error)
	AccessTTL() time.Duration
}

type jwtService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewJWTService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) TokenService {
	return &jwtService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *jwtService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *jwtService) IssueAccessToken(user *entity.User) (Token, error) {
	return s.issue(user, AccessToken, s.accessSecret, s.accessTTL)
}

func (s *jwtService) IssueRefreshToken(user *entity.User) (Token, error) {
	return s.issue(user, RefreshToken, s.refreshSecret, s.refreshTTL)
}

func (s *jwtService) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, AccessToken, s.accessSecret)
}

func (s *jwtService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, RefreshToken, s.refreshSecret)
}

func (s *jwtService) issue(user *entity.User, typ TokenType, secret []byte, ttl time.Duration) (Token, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Roles,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign %s token: %w", typ, err)
	}

	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

func (s *jwtService) verify(tokenString string, typ TokenType, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.Type != typ || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// HashRefreshToken returns the digest persisted in place of the raw refresh token.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

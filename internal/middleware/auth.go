package middleware

import (
	"strings"

	"anoa.com/recipehub/internal/credential"
	"anoa.com/recipehub/internal/entity"
	userRepo "anoa.com/recipehub/internal/modules/user/repository"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/response"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	tokens   credential.TokenService
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, tokens credential.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAuth verifies the access token and loads the current user. The role
// is taken from the stored user, not from the token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.AbortWithError(c, apperror.Unauthenticated("authorization required"))
			return
		}

		claims, err := m.tokens.VerifyAccessToken(tokenString)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set(actorKey, policy.Actor{ID: user.ID, Email: user.Email, Role: user.Roles})
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		response.AbortWithError(c, apperror.Forbidden("insufficient role"))
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRole(entity.RoleAdmin)
}

// CurrentActor returns the identity attached by RequireAuth.
func CurrentActor(c *gin.Context) (policy.Actor, error) {
	v, ok := c.Get(actorKey)
	if !ok {
		return policy.Actor{}, apperror.Unauthenticated("user not authenticated")
	}
	actor, ok := v.(policy.Actor)
	if !ok {
		return policy.Actor{}, apperror.Unauthenticated("user not authenticated")
	}
	return actor, nil
}


package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"anoa.com/recipehub/internal/credential"
	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/user/dto"
	"anoa.com/recipehub/internal/modules/user/repository"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	"anoa.com/recipehub/pkg/validator"
	"github.com/rs/zerolog/log"
)

const tokenTypeBearer = "Bearer"

var errInvalidCredentials = apperror.Unauthenticated("invalid email or password")

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*entity.UserView, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, actor policy.Actor) error
	VerifyToken(ctx context.Context, actor policy.Actor) (*dto.VerifyTokenResponse, error)
}

type authService struct {
	repo   repository.UserRepository
	hasher credential.PasswordHasher
	tokens credential.TokenService
}

func NewAuthService(repo repository.UserRepository, hasher credential.PasswordHasher, tokens credential.TokenService) AuthService {
	return &authService{repo: repo, hasher: hasher, tokens: tokens}
}

// CheckPassword enforces the password composition rule on top of the length tags.
func CheckPassword(password string) error {
	var lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !digit {
		return apperror.Validation("password must contain at least one lowercase letter and one number")
	}
	return nil
}

// CreateAccount validates uniqueness, hashes the password and stores the user.
// Register and the admin user creation both go through it.
func CreateAccount(ctx context.Context, repo repository.UserRepository, hasher credential.PasswordHasher, username, email, password string, role entity.Role) (*entity.User, error) {
	if err := CheckPassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperror.Validation("invalid role")
	}

	if err := ensureUnique(ctx, repo, 0, &username, &email); err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: hash,
		Roles:    role,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ensureUnique rejects a username or email held by a user other than selfID.
func ensureUnique(ctx context.Context, repo repository.UserRepository, selfID uint, username, email *string) error {
	if email != nil {
		existing, err := repo.FindByEmail(ctx, *email)
		if err == nil && existing.ID != selfID {
			return apperror.Conflict("email already registered")
		}
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
	}
	if username != nil {
		existing, err := repo.FindByUsername(ctx, *username)
		if err == nil && existing.ID != selfID {
			return apperror.Conflict("username already taken")
		}
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*entity.UserView, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := CreateAccount(ctx, s.repo, s.hasher, req.Username, req.Email, req.Password, entity.RoleUser)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user registered")

	view := user.View()
	return &view, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Check(req.Password, user.Password) {
		return nil, errInvalidCredentials
	}

	res, refreshDigest, err := s.buildAuthResponse(user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID, &refreshDigest); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user logged in")
	return res, nil
}

// Refresh rotates the refresh token. The stored digest is swapped only if it
// still matches the presented token, so a replayed or concurrently used token
// is rejected.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByIDWithSecrets(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, credential.ErrTokenInvalid
		}
		return nil, err
	}

	oldDigest := credential.HashRefreshToken(refreshToken)
	if user.RefreshToken == nil || *user.RefreshToken != oldDigest {
		return nil, credential.ErrTokenInvalid
	}

	res, newDigest, err := s.buildAuthResponse(user)
	if err != nil {
		return nil, err
	}

	rotated, err := s.repo.RotateRefreshToken(ctx, user.ID, oldDigest, newDigest)
	if err != nil {
		return nil, err
	}
	if !rotated {
		log.Ctx(ctx).Warn().Uint("user_id", user.ID).Msg("refresh token rotation lost a race")
		return nil, credential.ErrTokenInvalid
	}

	return res, nil
}

func (s *authService) Logout(ctx context.Context, actor policy.Actor) error {
	return s.repo.UpdateRefreshToken(ctx, actor.ID, nil)
}

func (s *authService) VerifyToken(ctx context.Context, actor policy.Actor) (*dto.VerifyTokenResponse, error) {
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &dto.VerifyTokenResponse{Valid: true, User: &view}, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, string, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	view := user.View()
	return &dto.AuthResponse{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		User:         &view,
	}, credential.HashRefreshToken(refresh.Value), nil
}

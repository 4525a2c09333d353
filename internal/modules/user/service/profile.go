package service

import (
	"context"
	"strings"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/internal/modules/user/dto"
	"anoa.com/recipehub/internal/modules/user/repository"
	"anoa.com/recipehub/internal/policy"
	"anoa.com/recipehub/pkg/apperror"
	commonDto "anoa.com/recipehub/pkg/dto"
	"anoa.com/recipehub/pkg/storage"
	"anoa.com/recipehub/pkg/validator"
)

const profilePictureFolder = "profile_pictures"

type UserService interface {
	GetProfile(ctx context.Context, actor policy.Actor) (*entity.UserView, error)
	UpdateProfile(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (*entity.UserView, error)
	UploadProfilePicture(ctx context.Context, actor policy.Actor, image commonDto.ImageFile) (*entity.UserView, error)
	ListUsers(ctx context.Context) ([]entity.UserView, error)
}

type userService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
}

func NewUserService(repo repository.UserRepository, imageStorage storage.ImageStorage) UserService {
	return &userService{repo: repo, imageStorage: imageStorage}
}

func (s *userService) GetProfile(ctx context.Context, actor policy.Actor) (*entity.UserView, error) {
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor policy.Actor, req dto.UpdateProfileRequest) (*entity.UserView, error) {
	if req.Empty() {
		return nil, apperror.Validation("at least one field must be provided")
	}
	if req.Username != nil {
		v := strings.TrimSpace(*req.Username)
		req.Username = &v
	}
	if req.Email != nil {
		v := normalizeEmail(*req.Email)
		req.Email = &v
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	if err := ensureUnique(ctx, s.repo, actor.ID, req.Username, req.Email); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Username != nil {
		fields["username"] = *req.Username
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if err := s.repo.UpdateFields(ctx, actor.ID, fields); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, actor)
}

// UploadProfilePicture replaces the stored picture and removes the previous file.
func (s *userService) UploadProfilePicture(ctx context.Context, actor policy.Actor, image commonDto.ImageFile) (*entity.UserView, error) {
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	url, err := storage.Upload(ctx, s.imageStorage, image.Reader, profilePictureFolder, image.FileName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, user.ID, map[string]any{"profile_picture": url}); err != nil {
		storage.DeleteQuietly(ctx, s.imageStorage, &url)
		return nil, err
	}
	storage.DeleteQuietly(ctx, s.imageStorage, user.ProfilePicture)

	user.ProfilePicture = &url
	view := user.View()
	return &view, nil
}

// ListUsers returns regular users only.
func (s *userService) ListUsers(ctx context.Context) ([]entity.UserView, error) {
	users, err := s.repo.FindAll(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}
	return dto.NewUserViews(users), nil
}

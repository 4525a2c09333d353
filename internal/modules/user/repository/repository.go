package repository

import (
	"context"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// publicColumns excludes the password hash and refresh digest.
var publicColumns = []string{"id", "username", "email", "profile_picture", "roles", "created_at", "updated_at"}

type UserFilter struct {
	IncludeAdmins bool
}

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByIDWithSecrets(ctx context.Context, id uint) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	UpdateRefreshToken(ctx context.Context, id uint, digest *string) error
	RotateRefreshToken(ctx context.Context, id uint, oldDigest, newDigest string) (bool, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	return apperror.FromStorage(err, "user")
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Select(publicColumns).First(&user, id).Error; err != nil {
		return nil, apperror.FromStorage(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByIDWithSecrets(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperror.FromStorage(err, "user")
	}
	return &user, nil
}

// FindByEmail loads the password hash for credential checks.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, apperror.FromStorage(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Select(publicColumns).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, apperror.FromStorage(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, filter UserFilter) ([]*entity.User, error) {
	var users []*entity.User
	query := r.db.WithContext(ctx).Select(publicColumns)

	if !filter.IncludeAdmins {
		query = query.Where("roles <> ?", entity.RoleAdmin)
	}

	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperror.FromStorage(err, "user")
	}
	return users, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperror.FromStorage(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

// UpdateRefreshToken overwrites the stored digest. A nil digest clears it.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, id uint, digest *string) error {
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("refresh_token", digest).Error
	return apperror.FromStorage(err, "user")
}

// RotateRefreshToken swaps oldDigest for newDigest only if oldDigest is still current.
func (r *userRepository) RotateRefreshToken(ctx context.Context, id uint, oldDigest, newDigest string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ? AND refresh_token = ?", id, oldDigest).
		Update("refresh_token", newDigest)
	if res.Error != nil {
		return false, apperror.FromStorage(res.Error, "user")
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.User{}, id)
	if res.Error != nil {
		return apperror.FromStorage(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, apperror.FromStorage(err, "user")
	}
	return count, nil
}

package service

import (
	"context"
	"fmt"
	"io"

	"github.com/AndriiVeremi/contacts-api/internal/cache"
	"github.com/AndriiVeremi/contacts-api/internal/models"
	"github.com/AndriiVeremi/contacts-api/internal/repo"
)

// AvatarUploader is implemented by upload.Uploader.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, file io.Reader, username string) (string, error)
}

type UserService struct {
	Repo     *repo.GormRepo
	Cache    *cache.UserCache
	Uploader AvatarUploader
}

func NewUserService(r *repo.GormRepo, c *cache.UserCache) *UserService {
	return &UserService{Repo: r, Cache: c}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.Repo.GetUserByEmail(ctx, email)
}

func (s *UserService) ConfirmEmail(ctx context.Context, email string) error {
	return s.Repo.ConfirmUserEmail(ctx, email)
}

// UpdateAvatar uploads the image and stores the resulting URL, then drops
// the stale cached snapshot.
func (s *UserService) UpdateAvatar(ctx context.Context, user *models.User, file io.Reader) (*models.User, error) {
	if s.Uploader == nil {
		return nil, fmt.Errorf("avatar uploads are not configured")
	}

	url, err := s.Uploader.UploadAvatar(ctx, file, user.Username)
	if err != nil {
		return nil, fmt.Errorf("uploading avatar: %w", err)
	}

	updated, err := s.Repo.UpdateUserAvatar(ctx, user.ID, url)
	if err != nil {
		return nil, fmt.Errorf("saving avatar: %w", err)
	}

	if err := s.Cache.Delete(ctx, user.ID, user.Username); err != nil {
		cache.LogMiss(ctx, "delete", err)
	}
	return updated, nil
}

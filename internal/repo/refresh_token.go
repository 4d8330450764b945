package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AndriiVeremi/contacts-api/internal/models"
)

func (r *GormRepo) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

// GetActiveRefreshToken finds a token by hash that is neither revoked nor
// expired at the given instant. Missing, revoked and expired rows are all
// reported as a plain miss.
func (r *GormRepo) GetActiveRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token_hash = ? AND revoked_at IS NULL AND expired_at > ?", tokenHash, now).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *GormRepo) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", now).Error
}

// PurgeRefreshTokens removes rows past expiry and rows revoked before the
// cutoff. Returns the number of rows deleted.
func (r *GormRepo) PurgeRefreshTokens(ctx context.Context, now, revokedBefore time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expired_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, revokedBefore).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

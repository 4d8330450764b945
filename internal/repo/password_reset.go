package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AndriiVeremi/contacts-api/internal/models"
)

func (r *GormRepo) SavePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

func (r *GormRepo) GetPasswordResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var prt models.PasswordResetToken
	err := r.DB.WithContext(ctx).Where("token = ?", token).First(&prt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prt, nil
}

func (r *GormRepo) MarkPasswordResetTokenUsed(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("token = ?", token).
		Update("used", true).Error
}

// PurgePasswordResetTokens drops unusable rows: expired unused tokens and
// used tokens older than the cutoff.
func (r *GormRepo) PurgePasswordResetTokens(ctx context.Context, now, usedBefore time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("(expires_at < ? AND used = ?) OR (used = ? AND created_at < ?)", now, false, true, usedBefore).
		Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}

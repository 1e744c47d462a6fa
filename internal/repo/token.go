package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

var ErrTokenRevoked = errors.New("refresh token expired or revoked")

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormRepo) RevokeRefreshByHash(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction.
// It fails with ErrTokenRevoked when the old token is no longer usable.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ? AND expires_at > ?", oldJTI, false, time.Now().UTC()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}
		return tx.Create(next).Error
	})
}

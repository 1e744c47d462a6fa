package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

type UserFilter struct {
	Role   string
	Search string
}

func (f UserFilter) scope(q *gorm.DB) *gorm.DB {
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	return q
}

func (r *GormRepo) ListUsers(ctx context.Context, f UserFilter, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	users := make([]models.User, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Scopes(f.scope).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

func (r *GormRepo) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

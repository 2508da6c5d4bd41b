package repository

import (
	"context"

	"anoa.com/confessionwall/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfessionRepository interface {
	Create(ctx context.Context, confession *model.Confession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Confession, error)
	// FindRecent returns the newest confessions, most recent first.
	FindRecent(ctx context.Context, limit int) ([]*model.Confession, error)
}

type confessionRepository struct {
	db *gorm.DB
}

func NewConfessionRepository(db *gorm.DB) ConfessionRepository {
	return &confessionRepository{db: db}
}

func (r *confessionRepository) Create(ctx context.Context, confession *model.Confession) error {
	return r.db.WithContext(ctx).Create(confession).Error
}

func (r *confessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Confession, error) {
	var confession model.Confession
	if err := r.db.WithContext(ctx).First(&confession, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &confession, nil
}

func (r *confessionRepository) FindRecent(ctx context.Context, limit int) ([]*model.Confession, error) {
	var confessions []*model.Confession
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&confessions).Error
	return confessions, err
}

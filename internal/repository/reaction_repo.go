package repository

import (
	"context"

	"anoa.com/confessionwall/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	// Exists reports whether the (confession, device, type) identity has
	// an active record.
	Exists(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) (bool, error)
	// Create inserts a reaction. A duplicate-key violation surfaces as
	// gorm.ErrDuplicatedKey; callers decide how to treat the race.
	Create(ctx context.Context, reaction *model.Reaction) error
	// Delete removes the identity's record. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) error
	CountByType(ctx context.Context, confessionID uuid.UUID) (map[string]int64, error)
	// CountsForConfessions batches per-type counts for many confessions
	// in one grouped query.
	CountsForConfessions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]map[string]int64, error)
	FindByConfession(ctx context.Context, confessionID uuid.UUID) ([]model.Reaction, error)
	// DeviceReactions returns the reaction types a device holds, keyed by
	// confession id, for the given confessions.
	DeviceReactions(ctx context.Context, deviceID string, ids []uuid.UUID) (map[uuid.UUID][]string, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Exists(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) (bool, error) {
	// Find with a slice avoids "record not found" log noise from First()
	var existing []model.Reaction
	err := r.db.WithContext(ctx).
		Where("confession_id = ? AND device_id = ? AND reaction_type = ?",
			confessionID, deviceID, reactionType).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}

func (r *reactionRepository) Create(ctx context.Context, reaction *model.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) Delete(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) error {
	return r.db.WithContext(ctx).
		Where("confession_id = ? AND device_id = ? AND reaction_type = ?",
			confessionID, deviceID, reactionType).
		Delete(&model.Reaction{}).Error
}

func (r *reactionRepository) CountByType(ctx context.Context, confessionID uuid.UUID) (map[string]int64, error) {
	type result struct {
		ReactionType string
		Count        int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("reaction_type, count(*) as count").
		Where("confession_id = ?", confessionID).
		Group("reaction_type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, res := range results {
		counts[res.ReactionType] = res.Count
	}
	return counts, nil
}

func (r *reactionRepository) CountsForConfessions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]map[string]int64, error) {
	counts := make(map[uuid.UUID]map[string]int64)
	if len(ids) == 0 {
		return counts, nil
	}

	type result struct {
		ConfessionID uuid.UUID
		ReactionType string
		Count        int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("confession_id, reaction_type, count(*) as count").
		Where("confession_id IN ?", ids).
		Group("confession_id, reaction_type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if counts[res.ConfessionID] == nil {
			counts[res.ConfessionID] = make(map[string]int64)
		}
		counts[res.ConfessionID][res.ReactionType] = res.Count
	}
	return counts, nil
}

func (r *reactionRepository) FindByConfession(ctx context.Context, confessionID uuid.UUID) ([]model.Reaction, error) {
	var reactions []model.Reaction
	err := r.db.WithContext(ctx).
		Where("confession_id = ?", confessionID).
		Find(&reactions).Error
	return reactions, err
}

func (r *reactionRepository) DeviceReactions(ctx context.Context, deviceID string, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	reacted := make(map[uuid.UUID][]string)
	if len(ids) == 0 {
		return reacted, nil
	}

	var reactions []model.Reaction
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND confession_id IN ?", deviceID, ids).
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}

	for _, reaction := range reactions {
		reacted[reaction.ConfessionID] = append(reacted[reaction.ConfessionID], reaction.ReactionType)
	}
	return reacted, nil
}

package service

import (
	"context"
	"fmt"
	"testing"

	"anoa.com/confessionwall/internal/model"
	"anoa.com/confessionwall/internal/repository"
	"anoa.com/confessionwall/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
// TranslateError mirrors production: duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.Confession{}, &model.Reaction{}))
	return db
}

func createConfession(t *testing.T, db *gorm.DB, content string) *model.Confession {
	confession := &model.Confession{Content: content}
	require.NoError(t, db.Create(confession).Error)
	return confession
}

func TestToggleAddsThenRemoves(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReactionService(repository.NewReactionRepository(db))
	confession := createConfession(t, db, "late night thoughts")
	ctx := context.Background()

	first, err := svc.Toggle(ctx, confession.ID, "device-1", model.ReactionSupport)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, first.Action)
	assert.Equal(t, int64(1), first.Counts.SupportCount)
	assert.Equal(t, int64(0), first.Counts.RelateCount)

	second, err := svc.Toggle(ctx, confession.ID, "device-1", model.ReactionSupport)
	require.NoError(t, err)
	assert.Equal(t, ActionRemoved, second.Action)
	assert.Equal(t, int64(0), second.Counts.SupportCount)
}

func TestToggleUpdatesGetState(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReactionService(repository.NewReactionRepository(db))
	confession := createConfession(t, db, "state check")
	ctx := context.Background()

	_, err := svc.Toggle(ctx, confession.ID, "device-1", model.ReactionRelate)
	require.NoError(t, err)

	state, err := svc.GetState(ctx, confession.ID, "device-1")
	require.NoError(t, err)
	assert.True(t, state.UserReactions.Relate)
	assert.False(t, state.UserReactions.Support)
	assert.Equal(t, int64(1), state.Counts.RelateCount)

	_, err = svc.Toggle(ctx, confession.ID, "device-1", model.ReactionRelate)
	require.NoError(t, err)

	state, err = svc.GetState(ctx, confession.ID, "device-1")
	require.NoError(t, err)
	assert.False(t, state.UserReactions.Relate)
	assert.Equal(t, int64(0), state.Counts.RelateCount)
}

func TestToggleCountsMatchDistinctActors(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReactionService(repository.NewReactionRepository(db))
	confession := createConfession(t, db, "popular one")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Toggle(ctx, confession.ID, fmt.Sprintf("device-%d", i), model.ReactionSupport)
		require.NoError(t, err)
	}

	result, err := svc.Toggle(ctx, confession.ID, "device-4", model.ReactionSupport)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, result.Action)
	assert.Equal(t, int64(4), result.Counts.SupportCount)
}

func TestToggleBothCountsReturned(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReactionService(repository.NewReactionRepository(db))
	confession := createConfession(t, db, "mixed reactions")
	ctx := context.Background()

	_, err := svc.Toggle(ctx, confession.ID, "device-1", model.ReactionRelate)
	require.NoError(t, err)

	// Toggling support must still report the relate count.
	result, err := svc.Toggle(ctx, confession.ID, "device-2", model.ReactionSupport)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Counts.SupportCount)
	assert.Equal(t, int64(1), result.Counts.RelateCount)
}

func TestToggleRejectsUnknownKind(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReactionService(repository.NewReactionRepository(db))

	_, err := svc.Toggle(context.Background(), uuid.New(), "device-1", "dislike")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestRemoveIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReactionRepository(db)
	svc := NewReactionService(repo)
	confession := createConfession(t, db, "nothing to remove")
	ctx := context.Background()

	_, err := svc.Toggle(ctx, confession.ID, "device-1", model.ReactionSupport)
	require.NoError(t, err)

	// Removing an absent reaction succeeds and leaves counts unchanged.
	require.NoError(t, svc.Remove(ctx, confession.ID, "device-2", model.ReactionSupport))
	require.NoError(t, svc.Remove(ctx, confession.ID, "device-2", model.ReactionSupport))

	state, err := svc.GetState(ctx, confession.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Counts.SupportCount)
}

func TestDuplicateInsertIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewReactionRepository(db)
	svc := NewReactionService(repo)
	confession := createConfession(t, db, "race target")
	ctx := context.Background()

	// Simulate the losing side of a concurrent add: the record appears
	// between the existence check and the insert.
	err := repo.Create(ctx, &model.Reaction{
		ConfessionID: confession.ID,
		DeviceID:     "device-1",
		ReactionType: model.ReactionSupport,
	})
	require.NoError(t, err)

	err = repo.Create(ctx, &model.Reaction{
		ConfessionID: confession.ID,
		DeviceID:     "device-1",
		ReactionType: model.ReactionSupport,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// The same identity on a different kind is a separate record.
	result, err := svc.Toggle(ctx, confession.ID, "device-1", model.ReactionRelate)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, result.Action)
	assert.Equal(t, int64(1), result.Counts.SupportCount)
	assert.Equal(t, int64(1), result.Counts.RelateCount)
}

package service

import (
	"context"
	"encoding/json"

	"anoa.com/confessionwall/internal/dto"
	"anoa.com/confessionwall/internal/logger"
	"anoa.com/confessionwall/internal/model"
	"anoa.com/confessionwall/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InsertChannel is the pub/sub channel carrying newly inserted confession
// rows to connected feed clients.
const InsertChannel = "confessions:new"

type ConfessionService interface {
	// Create validates and normalizes the content, persists the
	// confession, and publishes the inserted row to the change feed.
	Create(ctx context.Context, content string) (*model.Confession, error)
	// GetFeed returns the newest confessions with aggregate counts and,
	// when deviceID is non-empty, that device's reaction flags.
	GetFeed(ctx context.Context, deviceID string, limit int) ([]dto.ConfessionResponse, error)
}

type confessionService struct {
	repo         repository.ConfessionRepository
	reactionRepo repository.ReactionRepository
	validator    *ContentValidator
	redisClient  *redis.Client
}

func NewConfessionService(repo repository.ConfessionRepository, reactionRepo repository.ReactionRepository, validator *ContentValidator, redisClient *redis.Client) ConfessionService {
	return &confessionService{
		repo:         repo,
		reactionRepo: reactionRepo,
		validator:    validator,
		redisClient:  redisClient,
	}
}

func (s *confessionService) Create(ctx context.Context, content string) (*model.Confession, error) {
	normalized, err := s.validator.Validate(content)
	if err != nil {
		return nil, err
	}

	confession := &model.Confession{Content: normalized}
	if err := s.repo.Create(ctx, confession); err != nil {
		return nil, err
	}

	// Change-feed publish. The insert already succeeded; a publish
	// failure only delays clients until their next fetch.
	if s.redisClient != nil {
		payload, err := json.Marshal(confession)
		if err == nil {
			if err := s.redisClient.Publish(ctx, InsertChannel, payload).Err(); err != nil {
				logger.Log.Warn("change feed publish failed", zap.Error(err))
			}
		}
	}

	return confession, nil
}

func (s *confessionService) GetFeed(ctx context.Context, deviceID string, limit int) ([]dto.ConfessionResponse, error) {
	confessions, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(confessions))
	for i, confession := range confessions {
		ids[i] = confession.ID
	}

	counts, err := s.reactionRepo.CountsForConfessions(ctx, ids)
	if err != nil {
		return nil, err
	}

	var deviceReactions map[uuid.UUID][]string
	if deviceID != "" {
		deviceReactions, err = s.reactionRepo.DeviceReactions(ctx, deviceID, ids)
		if err != nil {
			return nil, err
		}
	}

	feed := make([]dto.ConfessionResponse, 0, len(confessions))
	for _, confession := range confessions {
		entry := dto.ConfessionResponse{
			ID:        confession.ID.String(),
			Content:   confession.Content,
			CreatedAt: confession.CreatedAt,
		}
		if byType, ok := counts[confession.ID]; ok {
			entry.SupportCount = byType[model.ReactionSupport]
			entry.RelateCount = byType[model.ReactionRelate]
		}
		for _, reactionType := range deviceReactions[confession.ID] {
			switch reactionType {
			case model.ReactionSupport:
				entry.UserSupport = true
			case model.ReactionRelate:
				entry.UserRelate = true
			}
		}
		feed = append(feed, entry)
	}

	return feed, nil
}

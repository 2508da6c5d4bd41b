package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/confessionwall/internal/dto"
	"anoa.com/confessionwall/internal/model"
	"anoa.com/confessionwall/internal/repository"
	"anoa.com/confessionwall/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

type ReactionService interface {
	// Toggle flips the (confession, device, type) reaction: deletes the
	// record if present, inserts it otherwise, and returns the action
	// taken together with freshly recomputed counts for both kinds.
	Toggle(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) (*dto.ToggleReactionResponse, error)
	// Remove deletes the reaction if present; removing an absent
	// reaction is a no-op, not an error.
	Remove(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) error
	// GetState returns the confession's reaction rows, counts, and the
	// device's active flags. Flags are only populated when deviceID is
	// non-empty.
	GetState(ctx context.Context, confessionID uuid.UUID, deviceID string) (*dto.ReactionStateResponse, error)
}

type reactionService struct {
	repo repository.ReactionRepository
}

func NewReactionService(repo repository.ReactionRepository) ReactionService {
	return &reactionService{repo: repo}
}

func (s *reactionService) Toggle(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) (*dto.ToggleReactionResponse, error) {
	if !model.ValidReactionType(reactionType) {
		return nil, fmt.Errorf("%w: reaction_type must be %q or %q",
			apperror.ErrInvalidInput, model.ReactionSupport, model.ReactionRelate)
	}

	exists, err := s.repo.Exists(ctx, confessionID, deviceID, reactionType)
	if err != nil {
		return nil, err
	}

	var action string
	if exists {
		if err := s.repo.Delete(ctx, confessionID, deviceID, reactionType); err != nil {
			return nil, err
		}
		action = ActionRemoved
	} else {
		reaction := &model.Reaction{
			ConfessionID: confessionID,
			DeviceID:     deviceID,
			ReactionType: reactionType,
		}
		if err := s.repo.Create(ctx, reaction); err != nil {
			// A concurrent insert of the same identity lost the race
			// between our existence check and the insert. The unique
			// index keeps the record set consistent; report the benign
			// conflict instead of a hard failure.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.ErrConflict
			}
			return nil, err
		}
		action = ActionAdded
	}

	// Recompute both kinds together so the response is self-consistent.
	counts, err := s.counts(ctx, confessionID)
	if err != nil {
		return nil, err
	}

	return &dto.ToggleReactionResponse{
		Success:      true,
		Action:       action,
		ReactionType: reactionType,
		Counts:       counts,
	}, nil
}

func (s *reactionService) Remove(ctx context.Context, confessionID uuid.UUID, deviceID, reactionType string) error {
	if !model.ValidReactionType(reactionType) {
		return fmt.Errorf("%w: reaction_type must be %q or %q",
			apperror.ErrInvalidInput, model.ReactionSupport, model.ReactionRelate)
	}
	return s.repo.Delete(ctx, confessionID, deviceID, reactionType)
}

func (s *reactionService) GetState(ctx context.Context, confessionID uuid.UUID, deviceID string) (*dto.ReactionStateResponse, error) {
	reactions, err := s.repo.FindByConfession(ctx, confessionID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReactionStateResponse{
		Success: true,
		Data:    make([]dto.ReactionRow, 0, len(reactions)),
	}

	for _, reaction := range reactions {
		resp.Data = append(resp.Data, dto.ReactionRow{
			ReactionType: reaction.ReactionType,
			DeviceID:     reaction.DeviceID,
		})

		switch reaction.ReactionType {
		case model.ReactionSupport:
			resp.Counts.SupportCount++
		case model.ReactionRelate:
			resp.Counts.RelateCount++
		}

		if deviceID != "" && reaction.DeviceID == deviceID {
			switch reaction.ReactionType {
			case model.ReactionSupport:
				resp.UserReactions.Support = true
			case model.ReactionRelate:
				resp.UserReactions.Relate = true
			}
		}
	}

	return resp, nil
}

func (s *reactionService) counts(ctx context.Context, confessionID uuid.UUID) (dto.ReactionCounts, error) {
	byType, err := s.repo.CountByType(ctx, confessionID)
	if err != nil {
		return dto.ReactionCounts{}, err
	}
	return dto.ReactionCounts{
		SupportCount: byType[model.ReactionSupport],
		RelateCount:  byType[model.ReactionRelate],
	}, nil
}

package dto

import "github.com/google/uuid"

type ReactionRequest struct {
	ConfessionID uuid.UUID `json:"confession_id" binding:"required"`
	ReactionType string    `json:"reaction_type" binding:"required,oneof=support relate"`
	DeviceID     string    `json:"device_id" binding:"required,max=64"`
}

type ReactionCounts struct {
	SupportCount int64 `json:"support_count"`
	RelateCount  int64 `json:"relate_count"`
}

type UserReactions struct {
	Support bool `json:"support"`
	Relate  bool `json:"relate"`
}

type ToggleReactionResponse struct {
	Success      bool           `json:"success"`
	Action       string         `json:"action"` // "added" or "removed"
	ReactionType string         `json:"reaction_type"`
	Counts       ReactionCounts `json:"counts"`
}

type ReactionRow struct {
	ReactionType string `json:"reaction_type"`
	DeviceID     string `json:"device_id"`
}

type ReactionStateResponse struct {
	Success       bool           `json:"success"`
	Data          []ReactionRow  `json:"data"`
	Counts        ReactionCounts `json:"counts"`
	UserReactions UserReactions  `json:"userReactions"`
}

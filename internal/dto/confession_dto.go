package dto

import "time"

type CreateConfessionRequest struct {
	Content string `json:"content" binding:"required"`
}

type ConfessionResponse struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	SupportCount int64     `json:"support_count"`
	RelateCount  int64     `json:"relate_count"`
	UserSupport  bool      `json:"user_support"`
	UserRelate   bool      `json:"user_relate"`
}

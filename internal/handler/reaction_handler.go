package handler

import (
	"net/http"

	"anoa.com/confessionwall/internal/dto"
	"anoa.com/confessionwall/internal/service"
	"anoa.com/confessionwall/pkg/response"
	"anoa.com/confessionwall/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReactionHandler struct {
	service service.ReactionService
}

func NewReactionHandler(service service.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	var req dto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), req.ConfessionID, req.DeviceID, req.ReactionType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReactionHandler) RemoveReaction(c *gin.Context) {
	var req dto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.Remove(c.Request.Context(), req.ConfessionID, req.DeviceID, req.ReactionType); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ReactionHandler) GetReactions(c *gin.Context) {
	confessionID, err := uuid.Parse(c.Query("confession_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid confession_id"})
		return
	}

	// Optional: per-device flags only when device_id is supplied.
	deviceID := c.Query("device_id")

	state, err := h.service.GetState(c.Request.Context(), confessionID, deviceID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

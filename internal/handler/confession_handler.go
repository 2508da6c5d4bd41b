package handler

import (
	"net/http"

	"anoa.com/confessionwall/internal/dto"
	"anoa.com/confessionwall/internal/service"
	"anoa.com/confessionwall/pkg/response"
	"anoa.com/confessionwall/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ConfessionHandler struct {
	service   service.ConfessionService
	feedLimit int
}

func NewConfessionHandler(service service.ConfessionService, feedLimit int) *ConfessionHandler {
	return &ConfessionHandler{service: service, feedLimit: feedLimit}
}

func (h *ConfessionHandler) CreateConfession(c *gin.Context) {
	var req dto.CreateConfessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	confession, err := h.service.Create(c.Request.Context(), req.Content)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"confession": confession})
}

func (h *ConfessionHandler) GetConfessions(c *gin.Context) {
	deviceID := c.Query("deviceId")

	feed, err := h.service.GetFeed(c.Request.Context(), deviceID, h.feedLimit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"confessions": feed})
}

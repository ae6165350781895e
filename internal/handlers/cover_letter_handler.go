package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/services"
)

type CoverLetterHandler struct {
	CoverLetters *services.CoverLetterService
	Log          *slog.Logger
}

func NewCoverLetterHandler(letters *services.CoverLetterService, log *slog.Logger) *CoverLetterHandler {
	return &CoverLetterHandler{CoverLetters: letters, Log: log}
}

func (h *CoverLetterHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.CoverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	letter, err := h.CoverLetters.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, letter)
}

func (h *CoverLetterHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	letters, err := h.CoverLetters.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, letters)
}

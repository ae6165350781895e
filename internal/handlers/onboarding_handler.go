package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/services"
)

type OnboardingHandler struct {
	Onboarding *services.OnboardingService
	Log        *slog.Logger
}

func NewOnboardingHandler(onboarding *services.OnboardingService, log *slog.Logger) *OnboardingHandler {
	return &OnboardingHandler{Onboarding: onboarding, Log: log}
}

func (h *OnboardingHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	state, err := h.Onboarding.Current(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *OnboardingHandler) SubmitAnswers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dtos.OnboardingAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	state, err := h.Onboarding.SubmitAnswers(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/services"
)

type CandidateHandler struct {
	Candidates *services.CandidateService
	Log        *slog.Logger
}

func NewCandidateHandler(candidates *services.CandidateService, log *slog.Logger) *CandidateHandler {
	return &CandidateHandler{Candidates: candidates, Log: log}
}

func (h *CandidateHandler) List(c *gin.Context) {
	var q dtos.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Candidates.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CandidateHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	candidate, err := h.Candidates.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) Create(c *gin.Context) {
	var req dtos.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	candidate, err := h.Candidates.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}

func (h *CandidateHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dtos.CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	candidate, err := h.Candidates.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Candidates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/services"
)

type PackHandler struct {
	Packs *services.PackService
	Log   *slog.Logger
}

func NewPackHandler(packs *services.PackService, log *slog.Logger) *PackHandler {
	return &PackHandler{Packs: packs, Log: log}
}

func (h *PackHandler) List(c *gin.Context) {
	packs, err := h.Packs.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, packs)
}

func (h *PackHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pack, err := h.Packs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, pack)
}

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hirepath/internal/services"
)

type DocumentHandler struct {
	Documents *services.DocumentService
	Log       *slog.Logger
}

func NewDocumentHandler(docs *services.DocumentService, log *slog.Logger) *DocumentHandler {
	return &DocumentHandler{Documents: docs, Log: log}
}

// Upload is POST /documents with a multipart "file" field.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxDocumentSize+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		badRequest(c, err)
		return
	}
	if header.Size > services.MaxDocumentSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := header.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, err)
		return
	}

	doc, err := h.Documents.Upload(c.Request.Context(), userID, header.Filename, data)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	docs, err := h.Documents.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Documents.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Download is GET /documents/:id/download.
func (h *DocumentHandler) Download(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	doc, data, err := h.Documents.Download(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Data(http.StatusOK, doc.MimeType, data)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"coanime/internal/microservices/http-api/middleware"
	"coanime/internal/microservices/http-api/models"
)

// VocabularyReader lists the fixed genre and type vocabularies.
type VocabularyReader interface {
	Genres(ctx context.Context) ([]models.Genre, error)
	Types(ctx context.Context) ([]models.TitleType, error)
}

type VocabularyHandler struct {
	repo VocabularyReader
}

func NewVocabularyHandler(repo VocabularyReader) *VocabularyHandler {
	return &VocabularyHandler{repo: repo}
}

func (h *VocabularyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/genres", middleware.RequireScopes("read:titles"), h.Genres)
	rg.GET("/types", middleware.RequireScopes("read:titles"), h.Types)
}

func (h *VocabularyHandler) Genres(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.repo.Genres(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *VocabularyHandler) Types(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.repo.Types(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

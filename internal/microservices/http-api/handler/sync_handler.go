package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coanime/internal/ingestion/jikan"
	"coanime/internal/microservices/http-api/dto"
	"coanime/internal/microservices/http-api/middleware"
	"coanime/internal/microservices/http-api/service"
)

type SyncHandler struct {
	svc service.SyncService
}

func NewSyncHandler(svc service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", middleware.RequireScopes("run:sync"), middleware.RequireAdmin(), h.Run)
	rg.GET("/runs", middleware.RequireScopes("run:sync"), h.Runs)
}

// Run syncs one season page and returns the batch result. The request
// context is used as is: a page can take longer than the default timeout
// under the catalog rate limit.
func (h *SyncHandler) Run(c *gin.Context) {
	var in dto.SyncRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.RunSingle(c.Request.Context(), in.Year, in.Season, in.Page)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, jikan.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, jikan.ErrCatalogUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *SyncHandler) Runs(c *gin.Context) {
	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	runs, err := h.svc.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": runs})
}

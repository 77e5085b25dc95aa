package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coanime/internal/microservices/http-api/middleware"
	"coanime/internal/microservices/http-api/service"
)

// Services bundles what the admin API serves.
type Services struct {
	Auth       service.AuthService
	Titles     service.TitleService
	Sync       service.SyncService
	Vocabulary VocabularyReader
}

// NewRouter mounts every admin route on a new gin engine.
func NewRouter(svcs Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "API is alive"})
	})

	api := r.Group("/api")
	NewAuthHandler(svcs.Auth).RegisterRoutes(api.Group("/auth"))

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(svcs.Auth))
	NewTitleHandler(svcs.Titles).RegisterRoutes(protected.Group("/titles"))
	NewSyncHandler(svcs.Sync).RegisterRoutes(protected.Group("/sync"))
	if svcs.Vocabulary != nil {
		NewVocabularyHandler(svcs.Vocabulary).RegisterRoutes(protected)
	}

	return r
}

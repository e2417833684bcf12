package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-editor/internal/http/handlers"
	"github.com/phambaophuc/image-editor/internal/http/middleware"
	"github.com/phambaophuc/image-editor/internal/services/processor"
	"go.uber.org/zap"
)

type Router struct {
	editorHandler  *handlers.EditorHandler
	logger         *zap.Logger
	allowedOrigins []string
	maxUploadSize  int64
}

func NewRouter(
	editorHandler *handlers.EditorHandler,
	logger *zap.Logger,
	allowedOrigins []string,
	maxUploadSize int64,
) *Router {
	return &Router{
		editorHandler:  editorHandler,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		maxUploadSize:  maxUploadSize,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	// Multipart parts beyond this spill to temp files.
	router.MaxMultipartMemory = processor.UploadLimit(r.maxUploadSize) + 1<<20

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.allowedOrigins))
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.editorHandler.HealthCheck)

		v1.POST("/editors", middleware.RequireMultipart(), r.editorHandler.CreateEditor)

		editors := v1.Group("/editors/:id")
		{
			editors.GET("", r.editorHandler.GetEditor)
			editors.DELETE("", r.editorHandler.DeleteEditor)
			editors.POST("/image", middleware.RequireMultipart(), r.editorHandler.ReplaceImage)

			editors.POST("/resize", r.editorHandler.Resize)
			editors.POST("/resize/panel", r.editorHandler.EditResizePanel)
			editors.POST("/resize/apply", r.editorHandler.ApplyResizePanel)

			editors.POST("/crop/mode", r.editorHandler.SetCropMode)
			editors.PUT("/crop/rect", r.editorHandler.SetCropRect)
			editors.POST("/crop/pointer", r.editorHandler.Pointer)
			editors.GET("/crop/stream", r.editorHandler.StreamPointer)
			editors.POST("/crop/suggest", r.editorHandler.SuggestCrop)
			editors.POST("/crop/apply", r.editorHandler.ApplyCrop)

			editors.POST("/reset", r.editorHandler.Reset)
			editors.GET("/preview", r.editorHandler.Preview)
			editors.POST("/export", r.editorHandler.Export)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image editor is running",
		})
	})

	return router
}

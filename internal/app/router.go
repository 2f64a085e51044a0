package app

import (
	"coursegen_backend/docs"
	"coursegen_backend/internal/config"
	"coursegen_backend/internal/middleware"
	"coursegen_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerGenerationRoutes(authGroup, c, cfg)
		a.registerLearningRoutes(authGroup, c)
	}
}

// registerGenerationRoutes 会调用模型的接口按用户单独限流
func (a *App) registerGenerationRoutes(rg *gin.RouterGroup, c *controllers, cfg *config.Config) {
	limited := rg.Group("")
	limited.Use(middleware.GenerationLimiter(cfg.RateLimit.GenerationPerMinute))
	{
		limited.POST("/generate-outline", c.generation.GenerateOutline)
		limited.POST("/edit-outline", c.generation.EditOutline)
		limited.POST("/generate-course", c.generation.GenerateCourse)
	}

	rg.GET("/sessions/:id", c.generation.GetSession)
	rg.GET("/sessions/:id/conversation", c.generation.GetConversation)
}

func (a *App) registerLearningRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/update-progress", c.course.UpdateProgress)
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)

	rg.GET("/analytics", c.analytics.GetAnalytics)
	rg.POST("/analytics", c.analytics.GetAnalytics)
}

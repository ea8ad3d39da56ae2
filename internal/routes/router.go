package routes

import (
	"context"

	"race-weekend-api/internal/cache"
	"race-weekend-api/internal/config"
	"race-weekend-api/internal/controller"
	"race-weekend-api/internal/middleware"
	"race-weekend-api/internal/ratelimit"
	"race-weekend-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// Router wires the versioned HTTP surface. Auth resolves the principal,
// rate limiting covers the task endpoints, and every response carries a
// request id.
func Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())

	cfg := config.Get()
	auth := middleware.Auth(cfg.JWTSecret, repository.GetUserByID)
	limiter := ratelimit.New(
		ratelimit.RedisStore{Client: cache.Client(context.Background())},
		int64(cfg.RateLimitPerMinute),
	)

	v1 := router.Group("/v1")

	v1.GET("/health", controller.Health)
	v1.GET("/health/detailed", controller.HealthDetailed)

	v1.POST("/auth/register", controller.Register)
	v1.POST("/auth/login", controller.Login)

	events := v1.Group("/events")
	events.Use(auth)
	{
		events.POST("", controller.CreateEvent)
		events.GET("", controller.ListEvents)
		events.GET("/:id", controller.GetEvent)
	}

	tasks := v1.Group("/tasks")
	tasks.Use(auth, middleware.RateLimit(limiter))
	{
		tasks.GET("", controller.ListTasks)
		tasks.POST("", controller.CreateTask)
		tasks.GET("/:id", controller.GetTask)
		tasks.PATCH("/:id", controller.UpdateTask)
		tasks.DELETE("/:id", controller.DeleteTask)
		tasks.POST("/:id/remind", controller.RemindTask)
		// gin's tree cannot mix the static "event" segment with the
		// ":id" wildcard, so /tasks/event/:id/weather shares the
		// wildcard route and the handler checks the literal segments.
		tasks.GET("/:id/:eventID/:leaf", controller.EventWeather)
	}

	return router
}

package controller

import (
	"context"
	"net/http"
	"time"

	"race-weekend-api/internal/cache"
	"race-weekend-api/internal/database"

	"github.com/gin-gonic/gin"
)

// Health is the liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthDetailed reports per-dependency reachability; overall status is
// degraded if either store is down.
func HealthDetailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbOK := false
	if db := database.DB(ctx); db != nil {
		dbOK = db.PingContext(ctx) == nil
	}
	redisOK := false
	if r := cache.Client(ctx); r != nil {
		redisOK = r.Ping(ctx).Err() == nil
	}

	status := "ok"
	if !dbOK || !redisOK {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"dependencies": gin.H{
			"database": dbOK,
			"redis":    redisOK,
		},
	})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pharmacy-inventory-service/internal/repository"
)

// HealthCheck returns service health status (basic)
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pharmacy-inventory-service",
	})
}

// HealthHandler serves the extended health endpoint
type HealthHandler struct {
	db   *gorm.DB
	repo repository.CatalogRepositoryInterface
}

func NewHealthHandler(db *gorm.DB, repo repository.CatalogRepositoryInterface) *HealthHandler {
	return &HealthHandler{db: db, repo: repo}
}

// ExtendedHealthCheck returns detailed health status including the database and Redis
func (h *HealthHandler) ExtendedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	health := gin.H{
		"status":  "healthy",
		"service": "pharmacy-inventory-service",
		"checks":  gin.H{},
	}

	checks := health["checks"].(gin.H)

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = gin.H{
			"status": "healthy",
		}
	}

	if err := h.repo.RedisHealth(ctx); err != nil {
		checks["redis"] = gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	} else {
		checks["redis"] = gin.H{
			"status": "healthy",
		}
	}

	for _, check := range checks {
		if checkMap, ok := check.(gin.H); ok {
			if status, ok := checkMap["status"]; ok && status == "unhealthy" {
				health["status"] = "degraded"
				break
			}
		}
	}

	c.JSON(http.StatusOK, health)
}

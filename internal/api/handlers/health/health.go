package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/repository"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// 路由注入服務時使用的鍵
const (
	ContextRepository = "repository"
	ContextQueue      = "queue"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, ok := c.MustGet("config").(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, common.ToResponse(common.ErrInternalError, false))
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if q, ok := c.Get(ContextQueue); ok {
		if qm, ok := q.(*queue.Manager); ok && qm != nil {
			status := qm.GetQueueStatus()
			resp.Queue = &status
		}
	}

	common.LogDebug("Health check request", zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck 語料尚未載入完成時回傳 503
func ReadinessCheck(c *gin.Context) {
	v, ok := c.Get(ContextRepository)
	repo, _ := v.(*repository.Repository)
	if !ok || repo == nil {
		c.JSON(http.StatusServiceUnavailable, common.ToResponse(common.ErrServiceUnavailable, false))
		return
	}

	status, err := repo.CacheStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}

	code := http.StatusOK
	ready := "ready"
	if status.State != repository.StateReady {
		code = http.StatusServiceUnavailable
		ready = "not_ready"
	}
	c.JSON(code, gin.H{
		"status": ready,
		"state":  status.State,
		"cache":  status.Store,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

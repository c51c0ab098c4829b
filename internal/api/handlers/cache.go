package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/core/budget"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/repository"
	"meal-planner/internal/pkg/common"
)

// CacheHandler 快取狀態與清除
type CacheHandler struct {
	repo  *repository.Repository
	fast  *budget.FastEngine
	queue *queue.Manager
}

// NewCacheHandler 創建快取處理器
func NewCacheHandler(repo *repository.Repository, fast *budget.FastEngine, q *queue.Manager) *CacheHandler {
	return &CacheHandler{repo: repo, fast: fast, queue: q}
}

// Status 回傳各層快取狀態
func (h *CacheHandler) Status(c *gin.Context) {
	status, err := h.repo.CacheStatus(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}

	resp := gin.H{
		"repository": status,
		"fast":       h.fast.Stats(),
		"matcher":    h.repo.Transformer().Matcher().Stats(),
	}
	if h.queue != nil {
		resp["queue"] = h.queue.GetQueueStatus()
	}
	c.JSON(http.StatusOK, resp)
}

// Clear 清除倉庫與快速推薦快取
func (h *CacheHandler) Clear(c *gin.Context) {
	if err := h.repo.ClearCache(c.Request.Context()); err != nil {
		Error(c, err)
		return
	}
	h.fast.ClearCache()

	common.LogInfo("快取已由 API 清除", zap.String("request_id", RequestID(c)))
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

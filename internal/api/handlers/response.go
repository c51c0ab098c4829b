package handlers

import (
	"strconv"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// ContextConfig 路由注入設定時使用的鍵
const ContextConfig = "config"

// RequestID 取得請求 ID
func RequestID(c *gin.Context) string {
	return requestid.Get(c)
}

// debug 除錯模式下回應中帶錯誤細節
func debug(c *gin.Context) bool {
	v, ok := c.Get(ContextConfig)
	if !ok {
		return false
	}
	cfg, ok := v.(*config.Config)
	return ok && cfg.App.Debug
}

// Error 依錯誤類型回傳對應狀態碼
func Error(c *gin.Context, err error) {
	status := common.StatusOf(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, common.ToResponse(err, debug(c)))
}

// BadRequest 請求格式錯誤
func BadRequest(c *gin.Context, err error) {
	Error(c, common.Wrap(common.ErrInvalidRequest, err))
}

// QueryInt 讀取整數參數，無法解析時使用預設值
func QueryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

// BodySizeLimit 限制請求體大小
// 宣告長度超過上限時直接拒絕，未宣告長度的請求由 MaxBytesReader 在讀取時截斷
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			err := common.Wrap(common.ErrPayloadTooLarge,
				fmt.Errorf("content length %d exceeds %d", c.Request.ContentLength, maxSize))
			common.LogWarn("請求內容過大",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(common.StatusOf(err), common.ToResponse(err, false))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}

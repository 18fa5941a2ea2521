// Package api 将路由组挂载到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/router"
)

// RegisterGroup 注册 /api/v1 路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.Register(e.Group("/api/v1"))

	return e
}

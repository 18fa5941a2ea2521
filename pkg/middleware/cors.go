package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
)

// CORSMiddleware CORS中间件.
// 浏览器客户端需要带 Authorization 头访问 API，下载响应需要暴露
// Content-Disposition 才能取到文件名.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()

	if cfg.Debug {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = []string{"*"}
	}

	config.AddAllowHeaders("Authorization")
	config.AddExposeHeaders("Content-Disposition", "Content-Length")
	config.AllowFiles = true

	return cors.New(config)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
	appctx "github.com/yeisme/drivevault/pkg/context"
)

// SessionKey 构造会话在 KV 中的键.
func SessionKey(prefix, token string) string {
	return prefix + ":" + token
}

// BearerToken 从请求头提取 Bearer 令牌.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}

	return strings.TrimSpace(h[len(prefix):])
}

// AuthMiddleware 基于 KV 会话的 Bearer 令牌认证。
//   - 从 Authorization: Bearer <token> 提取不透明令牌
//   - 在 KV 中查找会话并解析出认证主体，注入 request context
//   - 支持通过配置跳过某些路径（如 /metrics、/api/v1/health、匿名分享）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		kv := appctx.GetKVClient(c.Request.Context())
		if kv == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
			return
		}

		data, err := kv.Get(c.Request.Context(), SessionKey(conf.SessionKeyPrefix, token))
		if err != nil || len(data) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var p appctx.Principal
		if err := sonic.Unmarshal(data, &p); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx := appctx.WithPrincipal(c.Request.Context(), &p)
		c.Request = c.Request.WithContext(ctx)
		c.Set("principal", &p)

		c.Next()
	}
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

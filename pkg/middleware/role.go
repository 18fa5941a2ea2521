// Package middleware 提供角色与权限相关的中间件和辅助方法。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appctx "github.com/yeisme/drivevault/pkg/context"
)

// Role 表示请求方的角色（使用 iota 实现的枚举，数值越大权限越高）。
type Role int

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

// String 返回角色的字符串表示。
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		fallthrough
	default:
		return "user"
	}
}

// parseRole 从字符串解析角色，未知值降级为 user。
func parseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "user":
		fallthrough
	default:
		return RoleUser
	}
}

// GetPrincipal 从 gin.Context 获取当前认证主体，未认证返回 nil。
func GetPrincipal(c *gin.Context) *appctx.Principal {
	if v, ok := c.Get("principal"); ok {
		if p, ok2 := v.(*appctx.Principal); ok2 {
			return p
		}
	}

	return appctx.GetPrincipal(c.Request.Context())
}

// GetRole 从认证主体解析当前请求角色，未认证缺省为 user。
func GetRole(c *gin.Context) Role {
	if p := GetPrincipal(c); p != nil {
		return parseRole(p.Role)
	}

	return RoleUser
}

// RequireMinRole 要求最小角色，不满足则返回 403。
func RequireMinRole(minRole Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := GetRole(c)
		if r < minRole { // 使用枚举的自然顺序进行最小角色判断
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			return
		}

		c.Next()
	}
}

// RequireAdmin 仅允许管理员访问。
func RequireAdmin() gin.HandlerFunc {
	return RequireMinRole(RoleAdmin)
}

// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appctx "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/middleware"
	"github.com/yeisme/drivevault/pkg/rule"
)

// respondErr 按业务错误类别映射 HTTP 状态码并输出统一错误体.
func respondErr(c *gin.Context, err error) {
	status := types.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Logger().Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON 绑定 JSON 请求体并执行领域校验规则.
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return false
	}

	if err := rule.ValidateStruct(out); err != nil {
		if fields := rule.Errors(err); fields != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}

		return false
	}

	return true
}

// principal 取出认证中间件注入的请求主体，缺失时返回 401.
func principal(c *gin.Context) (*appctx.Principal, bool) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})

		return nil, false
	}

	return p, true
}

// pathID 解析路径中的数字 ID 参数.
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})

		return 0, false
	}

	return uint(v), true
}

// targetFromQuery 解析 kind/id 查询参数为授权目标.
func targetFromQuery(c *gin.Context) (types.TargetRef, bool) {
	kind := c.Query("kind")
	if kind != types.TargetKindFile && kind != types.TargetKindFolder {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be file or folder"})

		return types.TargetRef{}, false
	}

	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})

		return types.TargetRef{}, false
	}

	return types.TargetRef{Kind: kind, ID: uint(id)}, true
}

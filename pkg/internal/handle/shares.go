package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// CreateGrant 将目标授权给另一个用户.
//
//	@Summary	创建授权
//	@Tags		共享
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.GrantRequest	true	"授权信息"
//	@Success	201		{object}	types.GrantInfo
//	@Router		/api/v1/shares/grants [post]
func CreateGrant(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req types.GrantRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	info, err := svc.Grant(c.Request.Context(), p.UserID, &req)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusCreated, info)
}

// RevokeGrant 撤销直接授权.
//
//	@Summary	撤销授权
//	@Tags		共享
//	@Accept		json
//	@Produce	json
//	@Param		request	body	types.RevokeGrantRequest	true	"撤销信息"
//	@Success	204
//	@Router		/api/v1/shares/grants [delete]
func RevokeGrant(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req types.RevokeGrantRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	if err := svc.RevokeGrant(c.Request.Context(), p.UserID, &req); err != nil {
		respondErr(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ListGrants 列出目标上的全部授权.
//
//	@Summary	授权列表
//	@Tags		共享
//	@Produce	json
//	@Param		kind	query		string	true	"file 或 folder"
//	@Param		id		query		int		true	"目标 ID"
//	@Success	200		{object}	types.ListGrantsResponse
//	@Router		/api/v1/shares/grants [get]
func ListGrants(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	target, ok := targetFromQuery(c)
	if !ok {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	resp, err := svc.ListGrants(c.Request.Context(), p.UserID, target)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListShared 列出共享给当前用户的条目.
//
//	@Summary	共享给我
//	@Tags		共享
//	@Produce	json
//	@Success	200	{object}	types.ListSharedResponse
//	@Router		/api/v1/shares/shared [get]
func ListShared(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	resp, err := svc.ListSharedWithMe(c.Request.Context(), p.UserID)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateShareLink 创建匿名分享链接.
//
//	@Summary	创建分享链接
//	@Tags		共享
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.CreateShareLinkRequest	true	"链接信息"
//	@Success	201		{object}	types.ShareLinkInfo
//	@Router		/api/v1/shares/links [post]
func CreateShareLink(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req types.CreateShareLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	info, err := svc.CreateLink(c.Request.Context(), p.UserID, &req)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusCreated, info)
}

// ListShareLinks 列出当前用户创建的分享链接.
//
//	@Summary	分享链接列表
//	@Tags		共享
//	@Produce	json
//	@Success	200	{object}	types.ListShareLinksResponse
//	@Router		/api/v1/shares/links [get]
func ListShareLinks(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	resp, err := svc.ListLinks(c.Request.Context(), p.UserID)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// RevokeShareLink 撤销分享链接.
//
//	@Summary	撤销分享链接
//	@Tags		共享
//	@Produce	json
//	@Param		token	path	string	true	"链接令牌"
//	@Success	204
//	@Failure	410	{object}	map[string]string
//	@Router		/api/v1/shares/links/{token} [delete]
func RevokeShareLink(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})

		return
	}

	svc := service.NewShareService(c.Request.Context())

	if err := svc.RevokeLink(c.Request.Context(), p.UserID, token); err != nil {
		respondErr(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ResolveShareLink 匿名访问分享链接，无需认证.
//
//	@Summary	访问分享链接
//	@Tags		共享
//	@Produce	json
//	@Param		token	path		string	true	"链接令牌"
//	@Success	200		{object}	types.ResolveShareResponse
//	@Failure	410		{object}	map[string]string
//	@Router		/api/v1/public/{token} [get]
func ResolveShareLink(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})

		return
	}

	svc := service.NewShareService(c.Request.Context())

	resp, err := svc.Resolve(c.Request.Context(), token)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadSharedFile 通过分享链接匿名下载文件.
//
//	@Summary	下载分享文件
//	@Tags		共享
//	@Produce	application/octet-stream
//	@Param		token	path	string	true	"链接令牌"
//	@Param		file	query	int		false	"文件 ID，目标为文件夹时必填"
//	@Success	200		{file}	binary
//	@Router		/api/v1/public/{token}/download [get]
func DownloadSharedFile(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})

		return
	}

	var fileID uint

	if raw := c.Query("file"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})

			return
		}

		fileID = uint(v)
	}

	svc := service.NewShareService(c.Request.Context())

	info, rc, err := svc.ResolveDownload(c.Request.Context(), token, fileID)
	if err != nil {
		respondErr(c, err)

		return
	}
	defer func() { _ = rc.Close() }()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + info.Name + `"`,
	})
}

package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// CreateFolder 新建文件夹.
//
//	@Summary	新建文件夹
//	@Tags		文件夹
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.CreateFolderRequest	true	"文件夹信息"
//	@Success	201		{object}	types.FolderInfo
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/folders [post]
func CreateFolder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req types.CreateFolderRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	info, err := svc.Create(c.Request.Context(), p.UserID, &req)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusCreated, info)
}

// GetFolder 读取文件夹信息.
//
//	@Summary	文件夹详情
//	@Tags		文件夹
//	@Produce	json
//	@Param		id	path		int	true	"文件夹 ID"
//	@Success	200	{object}	types.FolderInfo
//	@Router		/api/v1/folders/{id} [get]
func GetFolder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	info, err := svc.Get(c.Request.Context(), p.UserID, id)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// ListFolder 列出文件夹内容；id 为 0 时列出自己的顶层条目.
//
//	@Summary	文件夹内容列表
//	@Tags		文件夹
//	@Produce	json
//	@Param		id	path		int	true	"文件夹 ID，0 为顶层"
//	@Success	200	{object}	types.FolderListing
//	@Router		/api/v1/folders/{id}/children [get]
func ListFolder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	// 顶层列表允许 id 为 0
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})

		return
	}

	svc := service.NewFolderService(c.Request.Context())

	listing, lerr := svc.List(c.Request.Context(), p.UserID, uint(id))
	if lerr != nil {
		respondErr(c, lerr)

		return
	}

	c.JSON(http.StatusOK, listing)
}

// RenameFolder 重命名文件夹.
//
//	@Summary	重命名文件夹
//	@Tags		文件夹
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"文件夹 ID"
//	@Param		request	body		types.RenameFolderRequest	true	"新名称"
//	@Success	200		{object}	types.FolderInfo
//	@Router		/api/v1/folders/{id}/rename [post]
func RenameFolder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.RenameFolderRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	info, err := svc.Rename(c.Request.Context(), p.UserID, id, req.Name)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// MoveFolder 移动文件夹.
//
//	@Summary	移动文件夹
//	@Tags		文件夹
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"文件夹 ID"
//	@Param		request	body		types.MoveFolderRequest	true	"目标父目录"
//	@Success	200		{object}	types.FolderInfo
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/folders/{id}/move [post]
func MoveFolder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.MoveFolderRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	info, err := svc.Move(c.Request.Context(), p.UserID, id, req.NewParentID)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// DeleteFolder 将文件夹及其内容移入回收站.
//
//	@Summary	删除文件夹
//	@Tags		文件夹
//	@Produce	json
//	@Param		id	path	int	true	"文件夹 ID"
//	@Success	204
//	@Router		/api/v1/folders/{id} [delete]
func DeleteFolder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), p.UserID, id); err != nil {
		respondErr(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// EffectiveAccess 查询当前用户对目标的有效访问级别.
//
//	@Summary	有效访问级别
//	@Tags		共享
//	@Produce	json
//	@Param		kind	query		string	true	"file 或 folder"
//	@Param		id		query		int		true	"目标 ID"
//	@Success	200		{object}	types.EffectiveAccessResponse
//	@Router		/api/v1/access [get]
func EffectiveAccess(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	target, ok := targetFromQuery(c)
	if !ok {
		return
	}

	svc := service.NewAccessService(c.Request.Context())

	level, err := svc.EffectiveAccess(c.Request.Context(), p.UserID, target)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, types.EffectiveAccessResponse{
		Target: target,
		UserID: p.UserID,
		Level:  level,
	})
}

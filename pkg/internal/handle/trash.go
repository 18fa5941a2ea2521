package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// ListTrash 列出当前用户回收站中的条目.
//
//	@Summary	回收站列表
//	@Tags		回收站
//	@Produce	json
//	@Success	200	{object}	types.ListTrashResponse
//	@Router		/api/v1/trash [get]
func ListTrash(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), p.UserID)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// RestoreTrash 恢复回收站中的条目.
//
//	@Summary	恢复条目
//	@Tags		回收站
//	@Produce	json
//	@Param		kind	path	string	true	"file 或 folder"
//	@Param		id		path	int		true	"条目 ID"
//	@Success	204
//	@Failure	409	{object}	map[string]string
//	@Router		/api/v1/trash/{kind}/{id}/restore [post]
func RestoreTrash(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTrashService(c.Request.Context())

	var err error

	switch c.Param("kind") {
	case types.TargetKindFile:
		err = svc.RestoreFile(c.Request.Context(), p.UserID, id)
	case types.TargetKindFolder:
		err = svc.RestoreFolder(c.Request.Context(), p.UserID, id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be file or folder"})

		return
	}

	if err != nil {
		respondErr(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// PurgeTrash 彻底删除回收站中的条目并回收配额.
//
//	@Summary	彻底删除条目
//	@Tags		回收站
//	@Produce	json
//	@Param		kind	path	string	true	"file 或 folder"
//	@Param		id		path	int		true	"条目 ID"
//	@Success	204
//	@Router		/api/v1/trash/{kind}/{id} [delete]
func PurgeTrash(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewTrashService(c.Request.Context())

	var err error

	switch c.Param("kind") {
	case types.TargetKindFile:
		err = svc.PurgeFile(c.Request.Context(), p.UserID, id)
	case types.TargetKindFolder:
		err = svc.PurgeFolder(c.Request.Context(), p.UserID, id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be file or folder"})

		return
	}

	if err != nil {
		respondErr(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

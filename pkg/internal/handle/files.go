package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/rule"
)

const defaultContentType = "application/octet-stream"

// UploadFile 以 multipart 表单上传文件内容与元数据.
//
//	@Summary	上传文件
//	@Tags		文件
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		folder_id	formData	int		false	"目标文件夹 ID，缺省落到根目录"
//	@Param		name		formData	string	false	"文件名，缺省取上传文件名"
//	@Param		file		formData	file	true	"文件内容"
//	@Success	201			{object}	types.FileInfo
//	@Failure	413			{object}	map[string]string
//	@Router		/api/v1/files [post]
func UploadFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req types.UploadFileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part required"})

		return
	}

	if req.Name == "" {
		req.Name = fh.Filename
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}
	defer func() { _ = src.Close() }()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Upload(c.Request.Context(), p.UserID, &req, src, fh.Size, contentType)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusCreated, info)
}

// GetFile 读取文件元数据.
//
//	@Summary	文件详情
//	@Tags		文件
//	@Produce	json
//	@Param		id	path		int	true	"文件 ID"
//	@Success	200	{object}	types.FileInfo
//	@Router		/api/v1/files/{id} [get]
func GetFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Get(c.Request.Context(), p.UserID, id)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// DownloadFile 下载文件内容.
//
//	@Summary	下载文件
//	@Tags		文件
//	@Produce	application/octet-stream
//	@Param		id	path	int	true	"文件 ID"
//	@Success	200	{file}	binary
//	@Router		/api/v1/files/{id}/download [get]
func DownloadFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	info, rc, err := svc.Download(c.Request.Context(), p.UserID, id)
	if err != nil {
		respondErr(c, err)

		return
	}
	defer func() { _ = rc.Close() }()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + info.Name + `"`,
	})
}

// RenameFile 重命名文件.
//
//	@Summary	重命名文件
//	@Tags		文件
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"文件 ID"
//	@Param		request	body		types.RenameFileRequest	true	"新名称"
//	@Success	200		{object}	types.FileInfo
//	@Router		/api/v1/files/{id}/rename [post]
func RenameFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.RenameFileRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Rename(c.Request.Context(), p.UserID, id, req.Name)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// MoveFile 移动文件到另一个文件夹.
//
//	@Summary	移动文件
//	@Tags		文件
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"文件 ID"
//	@Param		request	body		types.MoveFileRequest	true	"目标文件夹"
//	@Success	200		{object}	types.FileInfo
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/files/{id}/move [post]
func MoveFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.MoveFileRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Move(c.Request.Context(), p.UserID, id, req.NewFolderID)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// DeleteFile 将文件移入回收站.
//
//	@Summary	删除文件
//	@Tags		文件
//	@Produce	json
//	@Param		id	path	int	true	"文件 ID"
//	@Success	204
//	@Router		/api/v1/files/{id} [delete]
func DeleteFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), p.UserID, id); err != nil {
		respondErr(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// SearchEntries 按名称子串检索可见的文件与文件夹.
//
//	@Summary	检索
//	@Tags		文件
//	@Produce	json
//	@Param		q		query		string	true	"检索词"
//	@Param		limit	query		int		false	"单类结果上限"
//	@Success	200		{object}	types.SearchResponse
//	@Router		/api/v1/search [get]
func SearchEntries(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req types.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	svc := service.NewSearchService(c.Request.Context())

	resp, err := svc.Search(c.Request.Context(), p.UserID, &req)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

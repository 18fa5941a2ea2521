package types

import "time"

// FileInfo 文件元数据信息.
type FileInfo struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	OwnerID     uint      `json:"owner_id"`
	FolderID    uint      `json:"folder_id"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadFileRequest 上传文件请求（multipart 表单之外的字段）.
type UploadFileRequest struct {
	// FolderID 为 0 时落到上传者的根目录
	FolderID uint   `json:"folder_id" form:"folder_id"`
	Name     string `json:"name"      form:"name"      rule:"omitempty,entryname"` // 缺省取上传文件名
}

// RenameFileRequest 重命名文件请求.
type RenameFileRequest struct {
	Name string `binding:"required" json:"name" rule:"entryname"`
}

// MoveFileRequest 移动文件请求.
type MoveFileRequest struct {
	// NewFolderID 为 0 时移动到请求方的根目录
	NewFolderID uint `json:"new_folder_id"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// File 文件元数据模型，内容本体存于 S3，ObjectKey 为存储键.
type File struct {
	ID      uint   `gorm:"primaryKey"     json:"id"`
	Name    string `gorm:"size:512;index" json:"name"`
	OwnerID uint   `gorm:"index"          json:"owner_id"`
	// FolderID 文件必须挂在某个文件夹下
	FolderID    uint   `gorm:"index"                json:"folder_id"`
	Size        int64  `gorm:"index"                json:"size"`
	ContentType string `gorm:"size:255"             json:"content_type"`
	ObjectKey   string `gorm:"size:1024;uniqueIndex" json:"object_key"`
	ETag        string `gorm:"size:64"              json:"etag"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

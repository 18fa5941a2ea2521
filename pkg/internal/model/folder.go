package model

import (
	"time"

	"gorm.io/gorm"
)

// Folder 文件夹模型.
// ParentID 为 nil 表示用户根目录下的顶层文件夹；层级深度受服务层上限约束.
type Folder struct {
	ID      uint   `gorm:"primaryKey"     json:"id"`
	Name    string `gorm:"size:255;index" json:"name"`
	OwnerID uint   `gorm:"index"          json:"owner_id"`
	// ParentID 指向父文件夹，顶层为 NULL
	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

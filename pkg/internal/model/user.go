// Package model 定义数据库模型，DB 为元数据与权限的唯一真源.
package model

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型，配额字段与文件元数据同库，便于在同一事务内校验并累加.
type User struct {
	ID           uint   `gorm:"primaryKey"           json:"id"`
	Username     string `gorm:"size:255;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"size:128"             json:"-"`
	Role         string `gorm:"size:32;default:user" json:"role"`
	// Active 账号是否已激活，未激活账号不能登录
	Active bool `json:"active"`
	// StorageUsed 已计入配额的字节数（含回收站中的文件）
	StorageUsed  int64 `json:"storage_used"`
	StorageLimit int64 `json:"storage_limit"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

package model

import (
	"time"
)

// 授权目标类型.
const (
	TargetFile   = "file"
	TargetFolder = "folder"
)

// Permission 直接授权记录，(user_id, target_kind, target_id) 唯一，
// 重复授权以最新一条覆盖旧值.
type Permission struct {
	ID         uint   `gorm:"primaryKey"                               json:"id"`
	UserID     uint   `gorm:"index:idx_perm_user_target,unique;index"  json:"user_id"`
	TargetKind string `gorm:"index:idx_perm_user_target,unique;size:16" json:"target_kind"`
	TargetID   uint   `gorm:"index:idx_perm_user_target,unique;index:idx_perm_target" json:"target_id"`
	// Level 取值 read/edit/delete，比较语义由 types.AccessLevel 提供
	Level     string `gorm:"size:16" json:"level"`
	GrantedBy uint   `json:"granted_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// ShareLink 匿名分享链接，令牌为带前缀的 ULID.
// 撤销与过期分别记录：撤销后访问返回 Gone，过期返回 Expired.
type ShareLink struct {
	ID         uint   `gorm:"primaryKey"          json:"id"`
	Token      string `gorm:"size:64;uniqueIndex" json:"token"`
	OwnerID    uint   `gorm:"index"               json:"owner_id"`
	TargetKind string `gorm:"size:16"             json:"target_kind"`
	TargetID   uint   `gorm:"index"               json:"target_id"`

	ExpireAt  *time.Time `gorm:"index" json:"expire_at,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Revoked 链接是否已被撤销.
func (s *ShareLink) Revoked() bool {
	return s.RevokedAt != nil
}

// Expired 链接在 now 时刻是否已过期.
func (s *ShareLink) Expired(now time.Time) bool {
	return s.ExpireAt != nil && !now.Before(*s.ExpireAt)
}

package types

import "time"

// GrantRequest 授权请求，重复授权覆盖旧级别.
type GrantRequest struct {
	UserID uint        `binding:"required" json:"user_id" rule:"min=1"`
	Target TargetRef   `binding:"required" json:"target"`
	Level  AccessLevel `binding:"required" json:"level"`
}

// RevokeGrantRequest 撤销授权请求.
type RevokeGrantRequest struct {
	UserID uint      `binding:"required" json:"user_id" rule:"min=1"`
	Target TargetRef `binding:"required" json:"target"`
}

// GrantInfo 已生效的授权.
type GrantInfo struct {
	UserID    uint        `json:"user_id"`
	Target    TargetRef   `json:"target"`
	Level     AccessLevel `json:"level"`
	GrantedBy uint        `json:"granted_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// ListGrantsResponse 目标上的授权列表.
type ListGrantsResponse struct {
	Target TargetRef   `json:"target"`
	Grants []GrantInfo `json:"grants"`
}

// SharedEntry 他人直接授权给当前用户的条目.
type SharedEntry struct {
	Target    TargetRef   `json:"target"`
	Name      string      `json:"name"`
	OwnerID   uint        `json:"owner_id"`
	Level     AccessLevel `json:"level"`
	GrantedBy uint        `json:"granted_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// ListSharedResponse 共享给我的条目列表.
type ListSharedResponse struct {
	Entries []SharedEntry `json:"entries"`
}

// CreateShareLinkRequest 创建分享链接请求.链接只授予匿名只读访问.
type CreateShareLinkRequest struct {
	Target   TargetRef `binding:"required" json:"target"`
	ExpireIn *int      `json:"expire_in,omitempty" rule:"omitempty,min=60"` // 秒
}

// ShareLinkInfo 分享链接信息.
type ShareLinkInfo struct {
	Token     string     `json:"token"`
	Target    TargetRef  `json:"target"`
	ExpireAt  *time.Time `json:"expire_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ListShareLinksResponse 用户创建的分享链接列表.
type ListShareLinksResponse struct {
	Links []ShareLinkInfo `json:"links"`
}

// ResolveShareResponse 匿名访问分享链接的只读结果.
type ResolveShareResponse struct {
	Target TargetRef      `json:"target"`
	Folder *FolderListing `json:"folder,omitempty"`
	File   *FileInfo      `json:"file,omitempty"`
}

// EffectiveAccessResponse 有效访问级别查询结果.
type EffectiveAccessResponse struct {
	Target TargetRef   `json:"target"`
	UserID uint        `json:"user_id"`
	Level  AccessLevel `json:"level"`
}

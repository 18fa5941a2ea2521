package types

// UserInfo 用户信息.
type UserInfo struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	Active       bool   `json:"active"`
	StorageUsed  int64  `json:"storage_used"`
	StorageLimit int64  `json:"storage_limit"`
}

// QuotaInfo 配额使用情况.
type QuotaInfo struct {
	StorageUsed  int64 `json:"storage_used"`
	StorageLimit int64 `json:"storage_limit"`
	Available    int64 `json:"available"`
}

// ListUsersResponse 用户列表（管理员）.
type ListUsersResponse struct {
	Users []UserInfo `json:"users"`
	Total int64      `json:"total"`
}

// UpdateUserRequest 管理员更新用户请求.
type UpdateUserRequest struct {
	Active       *bool   `json:"active,omitempty"`
	Role         *string `json:"role,omitempty"         rule:"omitempty,oneof=user admin"`
	StorageLimit *int64  `json:"storage_limit,omitempty" rule:"omitempty,min=0"`
	// Password 管理员重置密码，会使已有会话之外的旧口令立即失效
	Password *string `json:"password,omitempty" rule:"omitempty,min=8,max=128"`
}

package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// EventID 事件唯一标识，发布时自动生成.
	EventID string `json:"event_id"`
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 对象领域 --------------------------

// EntryRef 标识一个文件或文件夹条目.
type EntryRef struct {
	Kind    string `json:"kind"` // file | folder
	ID      uint   `json:"id"`
	Name    string `json:"name,omitempty"`
	OwnerID uint   `json:"owner_id,omitempty"`
	Size    int64  `json:"size,omitempty"` // 仅文件
}

// ObjectStoredPayload 文件内容已写入对象存储且元数据入库.
type ObjectStoredPayload struct {
	Entry     EntryRef `json:"entry"`
	FolderID  uint     `json:"folder_id"`
	ObjectKey string   `json:"object_key"`
	ETag      string   `json:"etag,omitempty"`
	ActorID   uint     `json:"actor_id"`
}

// ObjectDeletedPayload 条目进入回收站.
// Cascaded 记录随同进入回收站的后代数量（文件夹级联删除时非零）.
type ObjectDeletedPayload struct {
	Entry    EntryRef `json:"entry"`
	Cascaded int      `json:"cascaded,omitempty"`
	ActorID  uint     `json:"actor_id"`
}

// ObjectPurgedPayload 条目被彻底清除，配额已回收.
type ObjectPurgedPayload struct {
	Entry          EntryRef `json:"entry"`
	ReclaimedBytes int64    `json:"reclaimed_bytes,omitempty"`
	ActorID        uint     `json:"actor_id"`
}

// ObjectRestoredPayload 条目从回收站恢复.
type ObjectRestoredPayload struct {
	Entry    EntryRef `json:"entry"`
	Restored int      `json:"restored,omitempty"` // 随同恢复的后代数量
	ActorID  uint     `json:"actor_id"`
}

// ObjectMovedPayload 条目移动到新的父文件夹.
type ObjectMovedPayload struct {
	Entry     EntryRef `json:"entry"`
	OldParent *uint    `json:"old_parent,omitempty"`
	NewParent *uint    `json:"new_parent,omitempty"`
	ActorID   uint     `json:"actor_id"`
}

// ObjectRenamedPayload 条目重命名.
type ObjectRenamedPayload struct {
	Entry   EntryRef `json:"entry"`
	OldName string   `json:"old_name"`
	ActorID uint     `json:"actor_id"`
}

// -------------------------- 共享领域 --------------------------

// ShareCreatedPayload 创建分享链接或直接授权.
type ShareCreatedPayload struct {
	Entry EntryRef `json:"entry"`
	Level string   `json:"level"`
	// Token 非空表示匿名分享链接；GranteeID 非零表示直接授权
	Token     string `json:"token,omitempty"`
	GranteeID uint   `json:"grantee_id,omitempty"`
	ActorID   uint   `json:"actor_id"`
}

// ShareRevokedPayload 撤销分享链接或直接授权.
type ShareRevokedPayload struct {
	Entry     EntryRef `json:"entry"`
	Token     string   `json:"token,omitempty"`
	GranteeID uint     `json:"grantee_id,omitempty"`
	ActorID   uint     `json:"actor_id"`
}

// -------------------------- 配额领域 --------------------------

// QuotaExceededPayload 上传因配额不足被拒绝.
type QuotaExceededPayload struct {
	UserID       uint  `json:"user_id"`
	StorageUsed  int64 `json:"storage_used"`
	StorageLimit int64 `json:"storage_limit"`
	Requested    int64 `json:"requested"`
}

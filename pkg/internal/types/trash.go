package types

import "time"

// TrashEntry 回收站条目.
type TrashEntry struct {
	Target    TargetRef `json:"target"`
	Name      string    `json:"name"`
	Size      int64     `json:"size,omitempty"` // 仅文件
	DeletedAt time.Time `json:"deleted_at"`
}

// ListTrashResponse 回收站列表.
type ListTrashResponse struct {
	Entries []TrashEntry `json:"entries"`
}

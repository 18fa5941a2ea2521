package types

import "time"

// FolderInfo 文件夹信息.
type FolderInfo struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uint      `json:"owner_id"`
	ParentID  *uint     `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateFolderRequest 新建文件夹请求，ParentID 为空落到请求方的根目录.
type CreateFolderRequest struct {
	Name     string `binding:"required" json:"name" rule:"entryname"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// RenameFolderRequest 重命名文件夹请求.
type RenameFolderRequest struct {
	Name string `binding:"required" json:"name" rule:"entryname"`
}

// MoveFolderRequest 移动文件夹请求，NewParentID 为空表示移动到根目录.
type MoveFolderRequest struct {
	NewParentID *uint `json:"new_parent_id,omitempty"`
}

// FolderListing 文件夹内容列表.
type FolderListing struct {
	Folder     *FolderInfo  `json:"folder"`
	SubFolders []FolderInfo `json:"sub_folders"`
	Files      []FileInfo   `json:"files"`
}

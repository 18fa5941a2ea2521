package types

// SearchRequest 检索请求，按名称子串匹配请求方可见的条目.
type SearchRequest struct {
	Query string `binding:"required" form:"q" json:"q" rule:"min=1,max=255"`
	Limit int    `form:"limit" json:"limit" rule:"omitempty,min=1,max=500"`
}

// SearchFolderMatch 命中的文件夹，附带请求方对它的有效访问级别.
type SearchFolderMatch struct {
	FolderInfo
	Level AccessLevel `json:"level"`
}

// SearchFileMatch 命中的文件，附带请求方对它的有效访问级别.
type SearchFileMatch struct {
	FileInfo
	Level AccessLevel `json:"level"`
}

// SearchResponse 检索结果.
type SearchResponse struct {
	Folders []SearchFolderMatch `json:"folders"`
	Files   []SearchFileMatch   `json:"files"`
}

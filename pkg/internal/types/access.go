// Package types 定义请求/响应 DTO 与领域值类型.
package types

import "fmt"

// AccessLevel 访问级别，具有全序：Read < Edit < Delete.
type AccessLevel int

const (
	// AccessNone 无任何访问权限.
	AccessNone AccessLevel = iota
	// AccessRead 可读取内容与元数据.
	AccessRead
	// AccessEdit 含 Read，可修改内容、重命名、新建子项.
	AccessEdit
	// AccessDelete 含 Edit，可删除、移动、授权，即所有者级别.
	AccessDelete
)

// String 返回级别的字符串表示.
func (l AccessLevel) String() string {
	switch l {
	case AccessRead:
		return "read"
	case AccessEdit:
		return "edit"
	case AccessDelete:
		return "delete"
	default:
		return "none"
	}
}

// Covers 判断当前级别是否覆盖所需级别.
func (l AccessLevel) Covers(required AccessLevel) bool {
	return l >= required
}

// MarshalJSON 按字符串序列化.
func (l AccessLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON 从字符串反序列化.
func (l *AccessLevel) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	lvl, err := ParseAccessLevel(s)
	if err != nil {
		return err
	}

	*l = lvl

	return nil
}

// ParseAccessLevel 解析字符串级别，未知值报错.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch s {
	case "read":
		return AccessRead, nil
	case "edit":
		return AccessEdit, nil
	case "delete":
		return AccessDelete, nil
	case "none", "":
		return AccessNone, nil
	default:
		return AccessNone, fmt.Errorf("%w: unknown access level %q", ErrInvalidInput, s)
	}
}

// 目标类型.
const (
	TargetKindFile   = "file"
	TargetKindFolder = "folder"
)

// TargetRef 指向一个文件或文件夹的标签联合.
type TargetRef struct {
	Kind string `binding:"required" json:"kind" rule:"target_kind"`
	ID   uint   `binding:"required" json:"id"   rule:"min=1"`
}

// IsFile 目标是否为文件.
func (t TargetRef) IsFile() bool { return t.Kind == TargetKindFile }

// IsFolder 目标是否为文件夹.
func (t TargetRef) IsFolder() bool { return t.Kind == TargetKindFolder }

// FileRef 构造文件目标.
func FileRef(id uint) TargetRef { return TargetRef{Kind: TargetKindFile, ID: id} }

// FolderRef 构造文件夹目标.
func FolderRef(id uint) TargetRef { return TargetRef{Kind: TargetKindFolder, ID: id} }

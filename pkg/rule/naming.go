package rule

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxEntryNameLen = 255

// validEntryName 校验文件/文件夹名：非空、不含路径分隔符与NUL、长度受限.
func validEntryName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > maxEntryNameLen {
		return false
	}

	if name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, "/\\\x00")
}

// RegisterDomainRules 注册领域校验规则.
func RegisterDomainRules() error {
	if err := RegisterValidation("entryname", validEntryName); err != nil {
		return err
	}

	// 授权级别与目标类型用别名固定取值集合
	RegisterAlias("access_level", "oneof=read edit delete")
	RegisterAlias("target_kind", "oneof=file folder")

	return nil
}

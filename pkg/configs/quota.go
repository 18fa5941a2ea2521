package configs

import "github.com/spf13/viper"

const (
	DefaultStorageLimit = 10 * 1024 * 1024 * 1024 // 默认用户存储配额 (10GB)
	DefaultMaxUploadSize = 1 * 1024 * 1024 * 1024 // 单次上传大小上限 (1GB)
)

// QuotaConfig 存储配额策略.
type QuotaConfig struct {
	Enforce             bool  `mapstructure:"enforce"`                              // 是否强制配额校验
	DefaultStorageLimit int64 `mapstructure:"default_storage_limit" rule:"min=1"`   // 新用户默认配额（字节）
	MaxUploadSize       int64 `mapstructure:"max_upload_size"       rule:"min=1"`   // 单次上传上限（字节）
}

func (c *QuotaConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("quota.enforce", true)
	v.SetDefault("quota.default_storage_limit", DefaultStorageLimit)
	v.SetDefault("quota.max_upload_size", DefaultMaxUploadSize)
}

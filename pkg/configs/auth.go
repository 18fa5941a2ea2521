package configs

import "github.com/spf13/viper"

const (
	DefaultAuthEnabled      = true   // 默认开启认证校验
	DefaultSessionTTL       = 1440   // 会话有效期（分钟），默认24小时
	DefaultBcryptCost       = 10     // bcrypt 哈希成本
	DefaultSessionKeyPrefix = "sess" // 会话在 KV 中的键前缀
)

// AuthConfig 认证相关配置（Bearer 令牌会话保存在 KV 中）。
type AuthConfig struct {
	Enabled          bool     `mapstructure:"enabled"`            // 开启认证校验
	SkipPaths        []string `mapstructure:"skip_paths"`         // 跳过认证的路径前缀（如 /metrics、/api/v1/health）
	SessionTTL       int      `mapstructure:"session_ttl"        rule:"min=1"`         // 会话有效期（分钟）
	BcryptCost       int      `mapstructure:"bcrypt_cost"        rule:"min=4,max=31"`  // 密码哈希成本
	SessionKeyPrefix string   `mapstructure:"session_key_prefix"`                      // KV 会话键前缀
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", DefaultAuthEnabled)
	v.SetDefault("auth.session_ttl", DefaultSessionTTL)
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("auth.session_key_prefix", DefaultSessionKeyPrefix)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/public",
	})
}

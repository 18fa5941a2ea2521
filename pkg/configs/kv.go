package configs

import (
	"github.com/spf13/viper"
)

// KVConfig 键值存储配置（承载登录会话与分享链接缓存）.
type KVConfig struct {
	Type     string        `mapstructure:"type"      rule:"oneof=memory,redis,nats"`
	Redis    RedisKVConfig `mapstructure:"redis"`
	NATS     NATSKVConfig  `mapstructure:"nats"`
	ShareTTL int           `mapstructure:"share_ttl" rule:"min=1"` // 分享链接缓存的有效期（秒）
}

// RedisKVConfig Redis KV 配置.
type RedisKVConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// NATSKVConfig NATS KV 配置.
type NATSKVConfig struct {
	URL      string `mapstructure:"url"      rule:"hostname_port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"   rule:"required"`
}

// GetKVType 返回当前配置的 KV 类型.
func (c *KVConfig) GetKVType() string {
	return c.Type
}

// setDefaults 设置 KV 配置的默认值.
func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.type", "memory")

	const defaultShareTTL = 300 // 5分钟，过期后回源数据库
	v.SetDefault("kv.share_ttl", defaultShareTTL)

	// Redis 默认值
	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 0)

	// NATS 默认值
	v.SetDefault("kv.nats.url", "localhost:4222")
	v.SetDefault("kv.nats.user", "")
	v.SetDefault("kv.nats.password", "")
	v.SetDefault("kv.nats.bucket", "drivevault-kv")
}

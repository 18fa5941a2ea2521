package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	Object  ObjectEventsConfig `mapstructure:"object"`
	Share   ShareEventsConfig  `mapstructure:"share"`
	Quota   QuotaEventsConfig  `mapstructure:"quota"`
}

// ObjectEventsConfig 针对文件与文件夹领域的事件开关。
type ObjectEventsConfig struct {
	Stored   bool `mapstructure:"stored"`
	Deleted  bool `mapstructure:"deleted"`
	Restored bool `mapstructure:"restored"`
	Purged   bool `mapstructure:"purged"`
	Moved    bool `mapstructure:"moved"`
	Renamed  bool `mapstructure:"renamed"`
}

// ShareEventsConfig 针对共享领域的事件开关。
type ShareEventsConfig struct {
	Created bool `mapstructure:"created"`
	Revoked bool `mapstructure:"revoked"`
}

// QuotaEventsConfig 针对配额领域的事件开关。
type QuotaEventsConfig struct {
	Exceeded bool `mapstructure:"exceeded"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 对象领域的事件：默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.object.stored", true)
	v.SetDefault("events.object.deleted", true)

	// 可选事件：默认关闭，按需开启
	v.SetDefault("events.object.restored", false)
	v.SetDefault("events.object.purged", false)
	v.SetDefault("events.object.moved", false)
	v.SetDefault("events.object.renamed", false)

	// 共享事件常用于审计，默认开启
	v.SetDefault("events.share.created", true)
	v.SetDefault("events.share.revoked", true)

	// 配额告警事件默认开启，便于监控对接
	v.SetDefault("events.quota.exceeded", true)
}

package configs

import "github.com/spf13/viper"

const (
	DefaultBreakerMinRequests       = 10  // 统计窗口内的最小请求数
	DefaultBreakerFailureRate       = 0.5 // 触发熔断的失败率
	DefaultBreakerIntervalSeconds   = 60  // 统计窗口（秒）
	DefaultBreakerTimeoutSeconds    = 30  // 熔断后恢复半开的时间（秒）
	DefaultBreakerMaxRequestsInHalf = 5   // 半开状态下允许的请求数
)

// BreakerConfig 熔断配置，保护后端存储不被雪崩击穿.
type BreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	MinRequests       uint32  `mapstructure:"min_requests"         rule:"min=1"`
	FailureRate       float64 `mapstructure:"failure_rate"         rule:"min=0,max=1"`
	IntervalSeconds   int     `mapstructure:"interval_seconds"     rule:"min=1"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"      rule:"min=1"`
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half" rule:"min=1"`
}

func (c *BreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.min_requests", DefaultBreakerMinRequests)
	v.SetDefault("breaker.failure_rate", DefaultBreakerFailureRate)
	v.SetDefault("breaker.interval_seconds", DefaultBreakerIntervalSeconds)
	v.SetDefault("breaker.timeout_seconds", DefaultBreakerTimeoutSeconds)
	v.SetDefault("breaker.max_requests_in_half", DefaultBreakerMaxRequestsInHalf)
}

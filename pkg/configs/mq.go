package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS    MQType = "nats"
	MQTypeRedis   MQType = "redis"
	MQTypeChannel MQType = "channel" // 进程内队列，适合单实例部署与测试

	DefaultMQURL         = "localhost:4222"
	DefaultMQUser        = ""
	DefaultMQPassword    = ""
	DefaultMaxReconnects = 5                // 默认最大重连次数.
	DefaultReconnectWait = 5                // 默认重连等待时间（秒）.
	DefaultMQClientID    = "drivevault-app" // 默认客户端ID

	// 队列配置常量.

	DefaultPingInterval = 20    // 默认ping间隔 (秒)
	DefaultBufferSize   = 32768 // 默认缓冲区大小 (32KB)
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type          MQType        `mapstructure:"type"           rule:"oneof=nats redis channel"`
	URL           string        `mapstructure:"url"            rule:"hostname_port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	ClientID      string        `mapstructure:"client_id"`
	MaxReconnects int           `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int           `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	PingInterval  int           `mapstructure:"ping_interval"  rule:"min=1,max=300"`
	BufferSize    int           `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	LoadBalance   bool          `mapstructure:"load_balance"`
	ClusterURLs   []string      `mapstructure:"cluster_urls"`
	JWT           string        `mapstructure:"jwt"`
	NKey          string        `mapstructure:"nkey"`
	NATS          MQNATSConfig  `mapstructure:"nats"`
	Redis         MQRedisConfig `mapstructure:"redis"`
}

// MQNATSConfig NATS JetStream 配置.
type MQNATSConfig struct {
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	StreamName             string `mapstructure:"stream_name"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool   `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
}

// MQRedisConfig Redis MQ 配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeChannel)

	v.SetDefault("mq.url", DefaultMQURL)
	v.SetDefault("mq.user", DefaultMQUser)
	v.SetDefault("mq.password", DefaultMQPassword)
	v.SetDefault("mq.client_id", DefaultMQClientID)
	v.SetDefault("mq.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.ping_interval", DefaultPingInterval)
	v.SetDefault("mq.buffer_size", DefaultBufferSize)
	v.SetDefault("mq.enable_metrics", true)
	v.SetDefault("mq.subject_prefix", "dv.")
	v.SetDefault("mq.load_balance", true)
	v.SetDefault("mq.cluster_urls", []string{})
	v.SetDefault("mq.jwt", "")
	v.SetDefault("mq.nkey", "")

	// NATS 默认值
	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.stream_name", "drivevault-stream")
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", true)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "drivevault-durable")

	// Redis 默认值
	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)
}

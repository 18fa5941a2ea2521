// Package mq 提供进程内消息队列实现.
// channel 类型基于 watermill 的 gochannel，不依赖外部 broker，
// 适合单实例部署、本地开发与测试.
package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/drivevault/pkg/configs"
)

// init 注册进程内队列工厂.
func init() {
	RegisterFactory(configs.MQTypeChannel, channelFactory)
}

// channelFactory 创建进程内 Publisher & Subscriber.
// Publisher 与 Subscriber 共享同一个 gochannel 实例，消息不出进程.
func channelFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	ch := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: int64(cfg.BufferSize),
			Persistent:          false,
		},
		logger,
	)

	return ch, ch, nil
}

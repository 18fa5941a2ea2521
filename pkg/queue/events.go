package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishObjectStored 发布 dv.object.stored 事件。
// 文件内容写入对象存储且元数据入库后调用，通知下游流程（如索引、病毒扫描等）。
func PublishObjectStored(pub message.Publisher, payload ObjectStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectStored, msg)
}

// ParseObjectStored 将 Watermill 消息解析为强类型 Envelope（ObjectStoredPayload）。
func ParseObjectStored(msg *message.Message) (Message[ObjectStoredPayload], error) {
	return ParseWatermillMessage[ObjectStoredPayload](msg)
}

// PublishQuotaExceeded 发布 dv.quota.exceeded 事件，供监控告警消费。
func PublishQuotaExceeded(pub message.Publisher, payload QuotaExceededPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicQuotaExceeded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicQuotaExceeded, msg)
}

// ParseQuotaExceeded 将 Watermill 消息解析为强类型 Envelope（QuotaExceededPayload）。
func ParseQuotaExceeded(msg *message.Message) (Message[QuotaExceededPayload], error) {
	return ParseWatermillMessage[QuotaExceededPayload](msg)
}

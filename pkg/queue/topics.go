// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：dv.<域>.<动作>，尽量稳定且向后兼容.
// 域：object(文件与文件夹)、share(共享)、quota(配额)
// 动作：stored/deleted/purged/restored/moved/renamed/created/revoked/exceeded

const (
	// 对象领域（文件与文件夹的生命周期）.
	TopicObjectStored   = "dv.object.stored"   // 文件内容已写入对象存储且元数据入库
	TopicObjectDeleted  = "dv.object.deleted"  // 条目进入回收站（软删除，含级联）
	TopicObjectPurged   = "dv.object.purged"   // 条目被彻底清除，内容已从对象存储移除
	TopicObjectRestored = "dv.object.restored" // 条目从回收站恢复
	TopicObjectMoved    = "dv.object.moved"    // 条目移动到新的父文件夹
	TopicObjectRenamed  = "dv.object.renamed"  // 条目重命名

	// 共享领域.
	TopicShareCreated = "dv.share.created" // 创建分享链接或直接授权
	TopicShareRevoked = "dv.share.revoked" // 撤销分享链接或直接授权

	// 配额领域.
	TopicQuotaExceeded = "dv.quota.exceeded" // 上传因配额不足被拒绝
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 对象领域主题集合.
	ObjectTopics = []string{
		TopicObjectStored, TopicObjectDeleted, TopicObjectPurged,
		TopicObjectRestored, TopicObjectMoved, TopicObjectRenamed,
	}

	// 共享领域主题集合.
	ShareTopics = []string{
		TopicShareCreated, TopicShareRevoked,
	}

	// 配额领域主题集合.
	QuotaTopics = []string{
		TopicQuotaExceeded,
	}
)

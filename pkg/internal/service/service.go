// Package service 实现文件服务的业务逻辑：权限解析、目录树变更、共享与配额.
// service 层不处理 HTTP 细节，依赖实例统一从 context 获取.
package service

import (
	"context"
	crand "crypto/rand"
	"errors"

	"gorm.io/gorm"

	"github.com/oklog/ulid"

	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/storage/mq"
	"github.com/yeisme/drivevault/pkg/internal/storage/s3"
	"github.com/yeisme/drivevault/pkg/internal/types"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/queue"
)

// MaxTreeDepth 目录树遍历的深度上限，超过视为数据异常并拒绝操作.
const MaxTreeDepth = 50

// DefaultSliceCapacity 结果集切片的初始容量.
const DefaultSliceCapacity = 16

// 全局单例的 ULID 熵源，使用单调递增策略，确保同一毫秒内生成的 ULID 具有排序稳定性。
var ulidEntropy = ulid.Monotonic(crand.Reader, 0)

// Service 聚合存储依赖，是各业务服务的公共底座.
type Service struct {
	dbClient *db.Client
	s3Client *s3.Client
	kvClient *kv.Client
	mqClient *mq.Client
}

// NewService 从 context 获取依赖实例.
// 为了安全起见，DB 缺失时直接 Fatal 而不是返回 nil，依赖此服务就不需要再检查.
func NewService(c context.Context) *Service {
	dbc := ctxPkg.GetDBClient(c)
	if dbc == nil || dbc.DB == nil {
		nlog.Logger().Fatal().Msg("db client not initialized")
	}

	return &Service{
		dbClient: dbc,
		s3Client: ctxPkg.GetS3Client(c),
		kvClient: ctxPkg.GetKVClient(c),
		mqClient: ctxPkg.GetMQClient(c),
	}
}

// gdb 返回绑定了 ctx 的 gorm 句柄.
func (s *Service) gdb(ctx context.Context) *gorm.DB {
	return s.dbClient.GetDB().WithContext(ctx)
}

// isNotFound 判断 gorm 未命中.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// wrapLookup 把 gorm 未命中转换为领域 NotFound，其他 DB 错误原样返回（调用方失败关闭）.
func wrapLookup(err error) error {
	if isNotFound(err) {
		return types.ErrNotFound
	}

	return err
}

// eventsEnabled 事件系统总开关.
func (s *Service) eventsEnabled() bool {
	return s.mqClient != nil && configs.GetConfig().Events.Enabled
}

// publish 按主题开关发布事件，发布失败只记日志不影响主流程.
func publish[T any](s *Service, topic string, enabled bool, payload T) {
	if !s.eventsEnabled() || !enabled {
		return
	}

	msg, err := queue.NewWatermillMessage(topic, payload, queue.WithProducer("drivevault"))
	if err != nil {
		nlog.Logger().Error().Err(err).Str("topic", topic).Msg("encode event failed")
		return
	}

	if err := s.mqClient.Publish(context.Background(), topic, msg); err != nil {
		nlog.Logger().Error().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

// newULID 生成一个新的 ULID 字符串.
func newULID() string {
	return ulid.MustNew(ulid.Now(), ulidEntropy).String()
}

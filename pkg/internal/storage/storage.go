// Package storage 聚合文件服务依赖的所有存储资源：数据库（元数据与权限）、
// S3（文件内容）、KV（会话与分享缓存）、MQ（领域事件）.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	s3Client := mgr.GetS3Client()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"sync"

	dbc "github.com/yeisme/drivevault/pkg/internal/storage/db"
	kvc "github.com/yeisme/drivevault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/drivevault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/drivevault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/drivevault/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	S3 *s3c.Client
	DB *dbc.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx)
		if e != nil {
			err = e
			return
		}
		m.DB = dbi

		// S3
		s3i, e := s3c.New(ctx)
		if e != nil {
			err = e
			return
		}
		m.S3 = s3i

		// KV
		kvi, e := kvc.NewKVClient(ctx)
		if e != nil {
			err = e
			return
		}
		m.KV = kvi

		// MQ
		mqi, e := mqc.New(ctx)
		if e != nil {
			err = e
			return
		}
		m.MQ = mqi

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 关闭所有存储连接.
func (m *Manager) Close() error {
	var err error

	if m.KV != nil {
		if e := m.KV.Close(); e != nil {
			err = e
		}
	}

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	return err
}

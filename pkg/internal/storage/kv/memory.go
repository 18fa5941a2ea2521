package kv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryEntry 带过期时间的值，expireAt 为零值表示永不过期.
type memoryEntry struct {
	data     []byte
	expireAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// MemoryKV 进程内 KV 实现，TTL 在读取时惰性检查.
// 会话和分享令牌缓存都依赖 TTL，因此这里不能像普通缓存那样忽略它.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(ctx context.Context, config any) (KVStore, error) {
	return &MemoryKV{data: make(map[string]memoryEntry)}, nil
}

// Get 获取键的值，已过期的键视为不存在并被顺带清理.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	if entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()

		return nil, fmt.Errorf("key not found: %s", key)
	}

	result := make([]byte, len(entry.data))
	copy(result, entry.data)

	return result, nil
}

// Set 设置键的值，ttl<=0 表示永不过期.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{data: make([]byte, len(value))}
	copy(entry.data, value)

	if ttl > 0 {
		entry.expireAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = entry
	m.mu.Unlock()

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

// Exists 检查键是否存在且未过期.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	return exists && !entry.expired(time.Now()), nil
}

// Keys 获取所有未过期的键.
func (m *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	now := time.Now()
	keys := make([]string, 0)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for k, entry := range m.data {
		if entry.expired(now) {
			continue
		}

		if pattern == "" || k == pattern {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleCache keeps the admin list between identity provider lookups
type RoleCache interface {
	// Admins returns the cached admin ids and whether the cache held them
	Admins(ctx context.Context) ([]string, bool, error)
	// StoreAdmins caches the admin ids for ttl
	StoreAdmins(ctx context.Context, ids []string, ttl time.Duration) error
	// Ping checks the cache backend
	Ping(ctx context.Context) error
}

// MemoryRoleCache is a process-local RoleCache
type MemoryRoleCache struct {
	mu      sync.RWMutex
	ids     []string
	expires time.Time
	now     func() time.Time
}

// NewMemoryRoleCache creates an empty in-process cache
func NewMemoryRoleCache() *MemoryRoleCache {
	return &MemoryRoleCache{now: time.Now}
}

// Admins implements RoleCache
func (m *MemoryRoleCache) Admins(ctx context.Context) ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.expires.IsZero() || !m.now().Before(m.expires) {
		return nil, false, nil
	}
	return append([]string(nil), m.ids...), true, nil
}

// StoreAdmins implements RoleCache
func (m *MemoryRoleCache) StoreAdmins(ctx context.Context, ids []string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ids = append([]string(nil), ids...)
	m.expires = m.now().Add(ttl)
	return nil
}

// Ping implements RoleCache
func (m *MemoryRoleCache) Ping(ctx context.Context) error {
	return nil
}

// RedisAdminsKey is the redis key holding the admin list
const RedisAdminsKey = "sportfed:roles:admins"

// RedisRoleCache shares the admin list between service instances
type RedisRoleCache struct {
	Client *redis.Client
	Key    string
}

// NewRedisRoleCache creates a cache on the redis server at addr
func NewRedisRoleCache(addr, password string, db int) *RedisRoleCache {
	return &RedisRoleCache{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		Key: RedisAdminsKey,
	}
}

// Admins implements RoleCache
func (r *RedisRoleCache) Admins(ctx context.Context) ([]string, bool, error) {
	raw, err := r.Client.Get(ctx, r.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

// StoreAdmins implements RoleCache
func (r *RedisRoleCache) StoreAdmins(ctx context.Context, ids []string, ttl time.Duration) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.Key, raw, ttl).Err()
}

// Ping implements RoleCache
func (r *RedisRoleCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Close releases the redis connections
func (r *RedisRoleCache) Close() error {
	return r.Client.Close()
}

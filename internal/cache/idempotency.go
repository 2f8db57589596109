// Package cache 使用 redis 保存批量排班请求的响应，让带有相同 Idempotency-Key 的重试直接返回第一次的结果
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInProgress = errors.New("相同幂等键的请求正在处理中")
	ErrMismatch   = errors.New("幂等键已用于不同的请求")
)

// StoredResponse 是被缓存的 HTTP 响应
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// record 是 redis 中保存的内容。Pending 为 true 表示第一次请求尚未完成
type record struct {
	Pending     bool            `json:"pending"`
	Fingerprint string          `json:"fingerprint"`
	Status      int             `json:"status,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

func (rec *record) resolve(fingerprint string) (*StoredResponse, error) {
	if rec.Fingerprint != fingerprint {
		return nil, ErrMismatch
	}
	if rec.Pending {
		return nil, ErrInProgress
	}
	return &StoredResponse{Status: rec.Status, Body: rec.Body}, nil
}

// Fingerprint 计算请求内容的摘要，同一个幂等键只能用于摘要相同的请求
func Fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type IdempotencyStore struct {
	rdb               *redis.Client
	expiration        time.Duration
	pendingExpiration time.Duration
	timeout           time.Duration
}

// NewIdempotencyStore 中 pendingExpiration 限制了一个没有完成的请求占用幂等键的最长时间
func NewIdempotencyStore(rdb *redis.Client, expiration, pendingExpiration, timeout time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		rdb:               rdb,
		expiration:        expiration,
		pendingExpiration: pendingExpiration,
		timeout:           timeout,
	}
}

func key(scope, idempotencyKey string) string {
	return fmt.Sprintf("idempotency_%s_%s", scope, idempotencyKey)
}

func (s *IdempotencyStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Begin 尝试占用幂等键。
//
// 占用成功时返回 (nil, nil)，调用方处理完请求后必须调用 Complete 或 Release。
// 键已经有完成的响应时返回该响应；第一次请求还在处理中时返回 ErrInProgress；
// 键曾用于内容不同的请求时返回 ErrMismatch。
func (s *IdempotencyStore) Begin(ctx context.Context, scope, idempotencyKey, fingerprint string) (*StoredResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pending, err := json.Marshal(record{Pending: true, Fingerprint: fingerprint})
	if err != nil {
		return nil, err
	}

	k := key(scope, idempotencyKey)
	reserved, err := s.rdb.SetNX(ctx, k, pending, s.pendingExpiration).Result()
	if err != nil {
		return nil, err
	}
	if reserved {
		return nil, nil
	}

	b, err := s.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// 占用者刚好释放或过期，让客户端稍后重试
			return nil, ErrInProgress
		}
		return nil, err
	}

	rec := &record{}
	if err := json.Unmarshal(b, rec); err != nil {
		return nil, err
	}

	return rec.resolve(fingerprint)
}

// Complete 保存最终响应并把过期时间延长为完整的缓存时间
func (s *IdempotencyStore) Complete(ctx context.Context, scope, idempotencyKey, fingerprint string, resp *StoredResponse) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	b, err := json.Marshal(record{Fingerprint: fingerprint, Status: resp.Status, Body: resp.Body})
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, key(scope, idempotencyKey), b, s.expiration).Err()
}

// Release 放弃占用，用于请求失败而没有可缓存的响应时
func (s *IdempotencyStore) Release(ctx context.Context, scope, idempotencyKey string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rdb.Del(ctx, key(scope, idempotencyKey)).Err()
}

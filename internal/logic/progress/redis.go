package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProgressStore 管理 Redis 中的 slot 状态记录与命中签名（幂等控制）
type RedisProgressStore struct {
	rdb          *redis.Client
	signatureTTL time.Duration
}

// Redis key 前缀
const (
	slotPrefix      = "progress:filter:slot"
	signaturePrefix = "progress:filter:sig"
)

const slotTTL = 3 * 24 * time.Hour

// NewRedisProgressStore 创建 Redis 判重管理器
func NewRedisProgressStore(rdb *redis.Client, signatureTTL time.Duration) *RedisProgressStore {
	return &RedisProgressStore{rdb: rdb, signatureTTL: signatureTTL}
}

func slotKey(slot uint64) string           { return fmt.Sprintf("%s:%d", slotPrefix, slot) }
func signatureKey(signature string) string { return signaturePrefix + ":" + signature }

// GetSlotStatus 获取 slot 的状态（Unknown / Processed / Invalid / Pending）
func (r *RedisProgressStore) GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error) {
	val, err := r.rdb.Get(ctx, slotKey(slot)).Int()
	switch {
	case errors.Is(err, redis.Nil):
		return SlotUnknown, nil
	case err != nil:
		return SlotUnknown, fmt.Errorf("redis get error: %w", err)
	case val == int(SlotProcessed):
		return SlotProcessed, nil
	case val == int(SlotInvalid):
		return SlotInvalid, nil
	case val == int(SlotPending):
		return SlotPending, nil
	default:
		return SlotUnknown, nil // 容错处理
	}
}

// MarkSlotStatus 设置 slot 的状态
func (r *RedisProgressStore) MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error {
	return r.rdb.Set(ctx, slotKey(slot), int(status), slotTTL).Err()
}

// ClaimSignature 使用 SETNX 抢占签名，TTL 内重复出现的交易不会再次投递
func (r *RedisProgressStore) ClaimSignature(ctx context.Context, signature string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, signatureKey(signature), 1, r.signatureTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx error: %w", err)
	}
	return ok, nil
}

// ReleaseSignature 删除签名占位，投递失败后 replay 可重新发送
func (r *RedisProgressStore) ReleaseSignature(ctx context.Context, signature string) error {
	if err := r.rdb.Del(ctx, signatureKey(signature)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

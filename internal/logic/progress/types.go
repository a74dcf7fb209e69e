package progress

import (
	"context"
)

// SlotStatus 表示 slot 的处理状态
type SlotStatus int

const (
	SlotUnknown   SlotStatus = 0 // Redis 不存在
	SlotProcessed SlotStatus = 1 // 已处理成功
	SlotInvalid   SlotStatus = 2 // 明确结构错误、跳过
	SlotPending   SlotStatus = 3 // 正在处理，暂未完成
)

func (s SlotStatus) String() string {
	switch s {
	case SlotProcessed:
		return "processed"
	case SlotInvalid:
		return "invalid"
	case SlotPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Store 进度存储，slot 状态用于重放判重，签名用于命中交易去重
type Store interface {
	GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error)
	MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error
	// ClaimSignature 首次出现返回 true，已存在返回 false
	ClaimSignature(ctx context.Context, signature string) (bool, error)
	// ReleaseSignature 撤销占位，使该签名可再次投递
	ReleaseSignature(ctx context.Context, signature string) error
}

package progress

import (
	"context"
	"time"

	"sol-tx-filter/internal/pkg/logger"
)

// ProgressManager 封装进度存储，控制 slot 判重与命中交易去重
type ProgressManager struct {
	store           Store
	recentThreshold time.Duration // 新 block 的判断阈值
	now             func() time.Time
}

func NewProgressManager(store Store, recentThresholdSec int) *ProgressManager {
	return &ProgressManager{
		store:           store,
		recentThreshold: time.Duration(recentThresholdSec) * time.Second,
		now:             time.Now,
	}
}

// ShouldProcessSlot 用于判断是否需要处理该 slot：
// - 如果 block 是“最近的”，直接处理
// - 否则查询 Redis，已处理或已判定无效的 slot 跳过
func (pm *ProgressManager) ShouldProcessSlot(ctx context.Context, slot uint64, blockTime int64) (bool, error) {
	if pm.now().Sub(time.Unix(blockTime, 0)) <= pm.recentThreshold {
		return true, nil // 近期 block，直接处理
	}

	status, err := pm.store.GetSlotStatus(ctx, slot)
	if err != nil {
		return false, err
	}
	return status != SlotProcessed && status != SlotInvalid, nil
}

// MarkSlotStatus 标记某 slot 的处理状态，Unknown / Pending 不参与记录
func (pm *ProgressManager) MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error {
	if status != SlotProcessed && status != SlotInvalid {
		return nil
	}
	return pm.store.MarkSlotStatus(ctx, slot, status)
}

// FilterNew 返回首次出现的签名。存储出错时保留该签名，宁可重复投递也不丢失。
func (pm *ProgressManager) FilterNew(ctx context.Context, signatures []string) []string {
	fresh := make([]string, 0, len(signatures))
	for _, sig := range signatures {
		ok, err := pm.store.ClaimSignature(ctx, sig)
		if err != nil {
			logger.Errorf("[Progress::FilterNew] tx=%s, claim failed: %v", sig, err)
			fresh = append(fresh, sig)
			continue
		}
		if ok {
			fresh = append(fresh, sig)
		}
	}
	return fresh
}

// Release 撤销投递失败交易的占位，释放失败只记录日志，最坏情况是该交易在 TTL 内不再投递
func (pm *ProgressManager) Release(ctx context.Context, signatures []string) {
	for _, sig := range signatures {
		if err := pm.store.ReleaseSignature(ctx, sig); err != nil {
			logger.Errorf("[Progress::Release] tx=%s, release failed: %v", sig, err)
		}
	}
}

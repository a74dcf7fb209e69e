package grpc

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/blocto/solana-go-sdk/rpc"

	"sol-tx-filter/internal/pkg/logger"
)

// maxRangeSize getBlocks 单次查询的最大 slot 跨度
const maxRangeSize = 10000

// SlotRange 闭区间 [From, To]，表示两个相邻已收到区块之间缺失的 slot
type SlotRange struct {
	From     uint64
	To       uint64
	SubmitAt time.Time
}

// BlockLister 查询区间内实际产出区块的 slot 列表
type BlockLister interface {
	GetBlocks(ctx context.Context, from, to uint64) ([]uint64, error)
}

type rpcBlockLister struct {
	client rpc.RpcClient
}

func (l rpcBlockLister) GetBlocks(ctx context.Context, from, to uint64) ([]uint64, error) {
	resp, err := l.client.GetBlocks(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getBlocks rpc error: %v", resp.Error)
	}
	return resp.Result, nil
}

// SlotChecker 延迟核对订阅流中跳过的 slot：
// 节点确认为空块（leader 跳过）的 slot 正常，否则记为疑似漏扫
type SlotChecker struct {
	lister     BlockLister
	rangeCh    chan SlotRange
	ctx        context.Context
	cancel     context.CancelFunc
	checkDelay time.Duration
}

func NewSlotChecker(endpoint string) *SlotChecker {
	return newSlotChecker(rpcBlockLister{client: rpc.NewRpcClient(endpoint)}, 30*time.Second)
}

func newSlotChecker(lister BlockLister, checkDelay time.Duration) *SlotChecker {
	ctx, cancel := context.WithCancel(context.Background())
	return &SlotChecker{
		lister:     lister,
		rangeCh:    make(chan SlotRange, 300),
		ctx:        ctx,
		cancel:     cancel,
		checkDelay: checkDelay,
	}
}

func (s *SlotChecker) Start() {
	s.run()
}

func (s *SlotChecker) Stop() {
	s.cancel()
}

// Submit 提交一个 slot 范围进行空块检测，闭区间 [from, to]
func (s *SlotChecker) Submit(from, to uint64) {
	if from > to {
		logger.Warnf("[SlotChecker::Submit] invalid slot range: from=%d > to=%d", from, to)
		return
	}

	select {
	case s.rangeCh <- SlotRange{From: from, To: to, SubmitAt: time.Now()}:
	default:
		logger.Warnf("[SlotChecker::Submit] channel full, dropped: [%d, %d]", from, to)
	}
}

func (s *SlotChecker) run() {
	const maxPendingRanges = 200

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	var pending []SlotRange
	for {
		select {
		case <-s.ctx.Done():
			logger.Infof("[SlotChecker::Run] stopped")
			return

		case r := <-s.rangeCh:
			if len(pending) >= maxPendingRanges {
				logger.Warnf("[SlotChecker::Run] too many pending ranges (%d), drop [%d, %d]", len(pending), r.From, r.To)
				continue
			}
			pending = append(pending, r)

		case now := <-ticker.C:
			var ready []SlotRange
			ready, pending = splitReady(pending, now, s.checkDelay)
			if len(ready) == 0 {
				continue
			}
			// 串行执行，防止 goroutine 累积
			missing := s.checkSlotRanges(ready)
			for _, slot := range missing {
				logger.Errorf("[SlotChecker::Check] slot=%d is missing, 疑似漏扫", slot)
			}
		}
	}
}

// splitReady 拆分出已等待满 delay 的区间
func splitReady(ranges []SlotRange, now time.Time, delay time.Duration) (ready, pending []SlotRange) {
	for _, r := range ranges {
		if now.Sub(r.SubmitAt) >= delay {
			ready = append(ready, r)
		} else {
			pending = append(pending, r)
		}
	}
	return ready, pending
}

// checkSlotRanges 返回既未被确认为空块、查询也未失败的 slot（疑似漏扫）
func (s *SlotChecker) checkSlotRanges(ranges []SlotRange) []uint64 {
	merged := mergeRanges(ranges)
	if len(merged) == 0 {
		return nil
	}

	produced := make(map[uint64]struct{})
	var failed []SlotRange
	for _, r := range merged {
		if s.ctx.Err() != nil {
			logger.Infof("[SlotChecker::Check] stopped while checking [%d, %d]", r.From, r.To)
			return nil
		}

		blocks, err := s.getBlocksWithRetry(r.From, r.To, 3)
		if err != nil {
			logger.Warnf("[SlotChecker::Check] getBlocks [%d, %d] failed after retries: %v", r.From, r.To, err)
			failed = append(failed, r)
			continue
		}
		for _, slot := range blocks {
			produced[slot] = struct{}{}
		}
	}

	var missing []uint64
	for _, r := range merged {
		for slot := r.From; slot <= r.To; slot++ {
			// merged 有序且无交集，failed 同样有序，可二分查找
			if slotInRanges(slot, failed) {
				continue
			}
			if _, ok := produced[slot]; ok {
				missing = append(missing, slot)
			}
		}
	}
	return missing
}

func slotInRanges(slot uint64, ranges []SlotRange) bool {
	// 找第一个 From > slot 的范围，再看前一个范围是否包含 slot
	i := sort.Search(len(ranges), func(i int) bool {
		return ranges[i].From > slot
	})
	if i == 0 {
		return false
	}
	r := ranges[i-1]
	return slot >= r.From && slot <= r.To
}

func (s *SlotChecker) getBlocksWithRetry(from, to uint64, maxRetries int) (blocks []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("getBlocks panic: %v", r)
		}
	}()

	const delay = 300 * time.Millisecond
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(s.ctx, 6*time.Second)
		blocks, err = s.lister.GetBlocks(ctx, from, to)
		cancel()
		if err == nil || attempt >= maxRetries || s.ctx.Err() != nil {
			return blocks, err
		}
		time.Sleep(delay)
	}
}

// mergeRanges 排序并合并重叠或相邻的区间，每段长度不超过 maxRangeSize，
// 用于控制 getBlocks 的查询规模
func mergeRanges(ranges []SlotRange) []SlotRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := slices.Clone(ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].From == sorted[j].From {
			return sorted[i].To < sorted[j].To
		}
		return sorted[i].From < sorted[j].From
	})

	// 先合并重叠 / 相邻区间
	joined := []SlotRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &joined[len(joined)-1]
		if r.From <= last.To+1 {
			last.To = max(last.To, r.To)
			continue
		}
		joined = append(joined, r)
	}

	// 再按 maxRangeSize 切分
	out := make([]SlotRange, 0, len(joined))
	for _, r := range joined {
		for from := r.From; ; from += maxRangeSize {
			to := from + maxRangeSize - 1
			if to >= r.To {
				out = append(out, SlotRange{From: from, To: r.To, SubmitAt: r.SubmitAt})
				break
			}
			out = append(out, SlotRange{From: from, To: to, SubmitAt: r.SubmitAt})
		}
	}
	return out
}

package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/mr-tron/base58"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/logx"

	"sol-tx-filter/internal/consts"
	"sol-tx-filter/internal/logic/filter"
	"sol-tx-filter/internal/logic/progress"
	"sol-tx-filter/internal/logic/txadapter"
	"sol-tx-filter/internal/mq"
	"sol-tx-filter/internal/svc"
	"sol-tx-filter/internal/utils"
)

type BlockProcessor struct {
	sc        *svc.ServiceContext
	blockChan chan *pb.SubscribeUpdateBlock // 接收 block 的 channel
	checker   *SlotChecker                  // 可为 nil，不做漏块核对
	lastSlot  uint64
	ctx       context.Context
	cancel    func(err error)
	logx.Logger
}

// matchedTx 命中过滤管道的交易
type matchedTx struct {
	signature string
	info      *pb.SubscribeUpdateTransactionInfo
}

func NewBlockProcessor(sc *svc.ServiceContext, blockChan chan *pb.SubscribeUpdateBlock, checker *SlotChecker) *BlockProcessor {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &BlockProcessor{
		sc:        sc,
		blockChan: blockChan,
		checker:   checker,
		Logger:    logx.WithContext(ctx).WithFields(logx.Field("service", "block_processor")),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (p *BlockProcessor) Start() {
	for {
		select {
		case <-p.ctx.Done():
			return // 退出
		case block := <-p.blockChan:
			p.procBlock(block)
			if len(p.blockChan) > 10 {
				p.Debugf("block chan len:%v", len(p.blockChan))
			}
		}
	}
}

func (p *BlockProcessor) Stop() {
	p.cancel(errors.New("service stop"))
}

func (p *BlockProcessor) procBlock(block *pb.SubscribeUpdateBlock) {
	startTime := time.Now()
	defer func() {
		p.Infof("[BlockProcessor::Proc] slot=%d, cost=%v", block.Slot, time.Since(startTime))
	}()

	p.trackGap(block.Slot)

	timeout := time.Duration(p.sc.Config.TimeConf.SlotDispatchTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	var blockTime int64
	if block.BlockTime != nil {
		blockTime = block.BlockTime.Timestamp
	}
	ok, err := p.sc.ProgressManager.ShouldProcessSlot(ctx, block.Slot, blockTime)
	if err != nil {
		p.Errorf("[BlockProcessor::Proc] slot=%d, progress check failed: %v", block.Slot, err)
	} else if !ok {
		p.Infof("[BlockProcessor::Proc] slot=%d already processed, skip", block.Slot)
		return
	}

	// 1. 并发过滤交易
	matches := matchBlock(p.sc.Pipeline, block)

	// 2. 签名判重
	matches = dedupe(ctx, p.sc.ProgressManager, matches)
	p.Infof("[BlockProcessor::Proc] slot=%d, txs=%d, matched=%d", block.Slot, len(block.Transactions), len(matches))

	// 3. 投递 Kafka
	status := progress.SlotProcessed
	if len(matches) > 0 {
		kafkaConf := p.sc.Config.KafkaProducerConf
		jobs := buildKafkaJobs(kafkaConf.Topic, kafkaConf.Partitions, matches)
		perMessage := time.Duration(p.sc.Config.TimeConf.EventSendTimeoutMs) * time.Millisecond
		report := publish(ctx, p.sc.ProgressManager, p.sc.Producer, jobs, perMessage)
		for _, f := range report.Failed {
			p.Errorf("[BlockProcessor::Send] slot=%d, tx=%s, err=%v", block.Slot, f.Job.Signature, f.Err)
		}
		p.Infof("[BlockProcessor::Send] slot=%d, ok=%d, failed=%d", block.Slot, len(report.Sent), len(report.Failed))
		if len(report.Failed) > 0 {
			status = progress.SlotUnknown
		}
	}

	// 4. 记录进度（Redis 使用独立 context，避免投递超时影响进度写入）
	markCtx, markCancel := context.WithTimeout(p.ctx, time.Second)
	defer markCancel()
	if err := p.sc.ProgressManager.MarkSlotStatus(markCtx, block.Slot, status); err != nil {
		p.Errorf("[BlockProcessor::Proc] slot=%d, mark status failed: %v", block.Slot, err)
	}
}

// trackGap 记录相邻两次收到的 slot 之间的空洞，交给 SlotChecker 延迟核对
func (p *BlockProcessor) trackGap(slot uint64) {
	if p.checker != nil && p.lastSlot != 0 && slot > p.lastSlot+1 {
		p.checker.Submit(p.lastSlot+1, slot-1)
	}
	if slot > p.lastSlot {
		p.lastSlot = slot
	}
}

// matchBlock 并发执行过滤管道，保持区块内交易顺序
func matchBlock(pipeline *filter.Pipeline, block *pb.SubscribeUpdateBlock) []*matchedTx {
	results := utils.ParallelMap(block.Transactions, consts.CpuCount+2,
		func(tx *pb.SubscribeUpdateTransactionInfo) *matchedTx {
			if !IsValidGrpcTx(tx) {
				return nil
			}
			sig := base58.Encode(tx.Transaction.Signatures[0])
			adapted, err := txadapter.AdaptGrpcTx(tx)
			if err != nil {
				logx.Errorf("[BlockProcessor::Adapt] tx=%s, slot=%d, err=%v", sig, block.Slot, err)
				return nil
			}
			accepted, err := pipeline.Evaluate(adapted)
			if err != nil || !accepted {
				return nil
			}
			return &matchedTx{signature: sig, info: tx}
		})

	matches := make([]*matchedTx, 0, len(results))
	for _, m := range results {
		if m != nil {
			matches = append(matches, m)
		}
	}
	return matches
}

func dedupe(ctx context.Context, pm *progress.ProgressManager, matches []*matchedTx) []*matchedTx {
	if len(matches) == 0 {
		return matches
	}
	sigs := make([]string, len(matches))
	for i, m := range matches {
		sigs[i] = m.signature
	}
	fresh := make(map[string]struct{}, len(sigs))
	for _, sig := range pm.FilterNew(ctx, sigs) {
		fresh[sig] = struct{}{}
	}

	out := matches[:0]
	for _, m := range matches {
		if _, ok := fresh[m.signature]; ok {
			out = append(out, m)
		}
	}
	return out
}

// publish 投递命中交易，并释放失败交易的判重占位，保证 replay 时可以重新投递
func publish(
	ctx context.Context,
	pm *progress.ProgressManager,
	producer mq.Producer,
	jobs []*mq.KafkaJob,
	perMessage time.Duration,
) mq.SendReport {
	report := mq.SendKafkaJobs(ctx, producer, jobs, perMessage)
	if failed := report.FailedSignatures(); len(failed) > 0 {
		// 投递 context 可能已超时，释放使用独立的超时
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		pm.Release(releaseCtx, failed)
	}
	return report
}

// buildKafkaJobs 按签名选择分区，同一交易重复投递时落到同一分区
func buildKafkaJobs(topic string, partitions int, matches []*matchedTx) []*mq.KafkaJob {
	jobs := make([]*mq.KafkaJob, 0, len(matches))
	for _, m := range matches {
		value, err := utils.EncodeEvent(consts.EventTypeMatchedTx, m.info)
		if err != nil {
			logx.Errorf("[BlockProcessor::Encode] tx=%s, err=%v", m.signature, err)
			continue
		}
		jobs = append(jobs, &mq.KafkaJob{
			Topic:     topic,
			Partition: int32(utils.PartitionHashBytes(m.info.Transaction.Signatures[0], uint32(partitions))),
			Signature: m.signature,
			Value:     value,
		})
	}
	return jobs
}

// IsValidGrpcTx 失败交易同样保留，由 status 过滤器决定是否丢弃
func IsValidGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) bool {
	if tx == nil || // - nil transaction info
		tx.Transaction == nil || // - missing Transaction field
		tx.Transaction.Message == nil || // - missing Message field in transaction
		len(tx.Transaction.Signatures) == 0 || // - missing transaction signature
		len(tx.Transaction.Signatures[0]) != 64 || // - invalid transaction signature length
		tx.IsVote || // - vote transaction skipped
		tx.Meta == nil { // - missing transaction meta data
		return false
	}
	return true
}

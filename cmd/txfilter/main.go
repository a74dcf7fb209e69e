package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"sol-tx-filter/internal/config"
	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/logic/filter"
	"sol-tx-filter/internal/pkg/logger"
	"sol-tx-filter/internal/source"
	"sol-tx-filter/internal/svc"
)

var (
	configFile = flag.String("f", "etc/txfilter.yaml", "the config file")
	inputFile  = flag.String("i", "", "JSON file with an array of getTransaction results")
	signature  = flag.String("sig", "", "fetch this transaction (and its neighbourhood) over RPC")
	backward   = flag.Uint("backward", 0, "slots before the target transaction to scan")
	forward    = flag.Uint("forward", 0, "slots after the target transaction to scan")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	c := config.MustLoad(*configFile)
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		logx.Errorf("init logger: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sc, err := svc.NewServiceContext(c)
	if err != nil {
		logx.Errorf("init service context: %v", err)
		os.Exit(1)
	}
	defer sc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := loadRecords(ctx, c)
	if err != nil {
		logx.Errorf("load records: %v", err)
		os.Exit(1)
	}

	matched := run(sc.Pipeline, records, os.Stdout)
	logx.Infof("filter pipeline %v: records=%d, matched=%d", sc.Pipeline.Names(), len(records), matched)
}

// loadRecords 优先读取本地文件，否则通过 RPC 拉取目标交易及前后窗口内的区块
func loadRecords(ctx context.Context, c *config.Config) ([]core.TransactionWithMeta, error) {
	switch {
	case *inputFile != "":
		src, err := source.LoadFile(*inputFile)
		if err != nil {
			return nil, err
		}
		records := make([]core.TransactionWithMeta, 0, len(src.Records()))
		for _, r := range src.Records() {
			records = append(records, r.TransactionWithMeta)
		}
		return records, nil

	case *signature != "":
		if c.RpcConf.Endpoint == "" {
			return nil, fmt.Errorf("rpc.endpoint is required with -sig")
		}
		fetcher := source.NewRpcFetcher(c.RpcConf.Endpoint, time.Duration(c.RpcConf.TimeoutSec)*time.Second)
		if *backward == 0 && *forward == 0 {
			tx, err := fetcher.FetchTransaction(ctx, source.FetchTransactionParam{Signature: *signature})
			if err != nil {
				return nil, err
			}
			return []core.TransactionWithMeta{tx.TransactionWithMeta}, nil
		}
		param, err := nearByParam(*signature, *backward, *forward)
		if err != nil {
			return nil, err
		}
		blocks, err := fetcher.FetchTransactionsNearBy(ctx, param)
		if err != nil {
			return nil, err
		}
		var records []core.TransactionWithMeta
		for _, b := range blocks {
			records = append(records, b.Transactions...)
		}
		return records, nil

	default:
		return nil, fmt.Errorf("either -i or -sig is required")
	}
}

// nearByParam 校验 slot 窗口参数，超出 uint32 的值直接报错
func nearByParam(signature string, backward, forward uint) (source.FetchTransactionsNearByParam, error) {
	if backward > math.MaxUint32 {
		return source.FetchTransactionsNearByParam{}, fmt.Errorf("-backward %d exceeds %d", backward, uint64(math.MaxUint32))
	}
	if forward > math.MaxUint32 {
		return source.FetchTransactionsNearByParam{}, fmt.Errorf("-forward %d exceeds %d", forward, uint64(math.MaxUint32))
	}
	return source.FetchTransactionsNearByParam{
		Signature: signature,
		Backward:  uint32(backward),
		Forward:   uint32(forward),
	}, nil
}

// run 逐条执行过滤管道，命中的交易签名逐行写入 w，返回命中数量
func run(pipeline *filter.Pipeline, records []core.TransactionWithMeta, w io.Writer) int {
	matched := 0
	for i := range records {
		accepted, err := pipeline.Evaluate(&records[i])
		if err != nil || !accepted {
			continue
		}
		matched++
		sigs, ok := filter.NewView(&records[i]).Signatures()
		if !ok || len(sigs) == 0 {
			fmt.Fprintf(w, "#%d\n", i)
			continue
		}
		fmt.Fprintln(w, sigs[0])
	}
	return matched
}

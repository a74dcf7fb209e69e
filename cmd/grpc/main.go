package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"

	"sol-tx-filter/internal/config"
	"sol-tx-filter/internal/logic/grpc"
	"sol-tx-filter/internal/pkg/logger"
	"sol-tx-filter/internal/svc"
)

var configFile = flag.String("f", "etc/grpc.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
	}()

	flag.Parse()

	c := config.MustLoad(*configFile)
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewGrpcServiceContext(c)
	if err != nil {
		panic(err)
	}
	defer serviceContext.Close()

	sg := zerosvc.NewServiceGroup()

	blockChan := make(chan *pb.SubscribeUpdateBlock, 200)

	// 有 RPC 节点时核对订阅流中跳过的 slot
	var checker *grpc.SlotChecker
	if c.RpcConf.Endpoint != "" {
		checker = grpc.NewSlotChecker(c.RpcConf.Endpoint)
		sg.Add(checker)
	}
	sg.Add(grpc.NewBlockProcessor(serviceContext, blockChan, checker))

	grpcService, err := grpc.NewGrpcStreamManager(c.Grpc, blockChan)
	if err != nil {
		panic(err)
	}
	sg.Add(grpcService)

	logx.Infof("Starting grpc stream service, filters=%v", serviceContext.Pipeline.Names())

	// 启动服务
	go sg.Start()

	// 等待退出信号
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logx.Info("Shutting down services...")
	sg.Stop()
}

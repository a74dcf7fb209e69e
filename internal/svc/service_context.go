package svc

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"

	"sol-tx-filter/internal/config"
	"sol-tx-filter/internal/logic/filter"
	"sol-tx-filter/internal/logic/progress"
	"sol-tx-filter/internal/mq"
	"sol-tx-filter/internal/pkg/logger"
)

// ServiceContext 包含过滤服务共享的资源
type ServiceContext struct {
	Config          *config.Config
	Pipeline        *filter.Pipeline
	Producer        *kafka.Producer
	Redis           *redis.Client
	ProgressManager *progress.ProgressManager
}

// NewServiceContext 只构建过滤管道，供离线（文件 / RPC）模式使用
func NewServiceContext(c *config.Config) (*ServiceContext, error) {
	pipeline, err := filter.BuildPipeline(c.FilterConf.ToFilterSpecs())
	if err != nil {
		return nil, fmt.Errorf("build filter pipeline: %w", err)
	}
	logger.Infof("[ServiceContext] filter pipeline: %v", pipeline.Names())
	return &ServiceContext{Config: c, Pipeline: pipeline}, nil
}

// NewGrpcServiceContext 在过滤管道之上初始化 Kafka 生产者与 Redis 进度存储
func NewGrpcServiceContext(c *config.Config) (*ServiceContext, error) {
	ctx, err := NewServiceContext(c)
	if err != nil {
		return nil, err
	}

	// 1. 初始化 Kafka 生产者
	producer, err := mq.NewKafkaProducer(c.KafkaProducerConf)
	if err != nil {
		logger.Errorf("Kafka producer 初始化失败: %v", err)
		return nil, err
	}
	ctx.Producer = producer

	// 2. 初始化 Redis 客户端（slot 状态 + 签名判重）
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisConf.Addr,
		Password: c.RedisConf.Password,
		DB:       c.RedisConf.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		ctx.Close()
		_ = rdb.Close()
		logger.Errorf("Redis 连接失败: %v", err)
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	ctx.Redis = rdb

	// 3. 初始化进度管理器
	store := progress.NewRedisProgressStore(rdb, time.Duration(c.RedisConf.SignatureTTLSec)*time.Second)
	ctx.ProgressManager = progress.NewProgressManager(store, c.ProgressConf.RecentThresholdSec)

	logger.Infof("GRPC 服务上下文初始化完成")
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Producer != nil {
		ctx.Producer.Flush(3000)
		ctx.Producer.Close()
	}
	if ctx.Redis != nil {
		_ = ctx.Redis.Close()
	}
}

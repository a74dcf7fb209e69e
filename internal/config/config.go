package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sol-tx-filter/internal/logic/filter"
	"sol-tx-filter/internal/pkg/logger"
)

type LogConfig struct {
	Format   string `yaml:"format"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `yaml:"log_dir"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `yaml:"level"`    // 日志级别：debug / info / warn / error
	Compress bool   `yaml:"compress"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// FilterSpec 单个过滤器配置，type 取值见 filter.Type* 常量
type FilterSpec struct {
	Type       string   `yaml:"type"`
	Accounts   []string `yaml:"accounts"`   // account_include / account_exclude
	Signatures []string `yaml:"signatures"` // signature_include / signature_exclude
	Status     string   `yaml:"status"`     // status: success / fail
}

// FilterConfig 过滤器列表，按顺序执行（逻辑与）
type FilterConfig struct {
	Pipeline []FilterSpec `yaml:"pipeline"`
}

func (c *FilterConfig) ToFilterSpecs() []filter.Spec {
	specs := make([]filter.Spec, len(c.Pipeline))
	for i, s := range c.Pipeline {
		specs[i] = filter.Spec{
			Type:       s.Type,
			Accounts:   s.Accounts,
			Signatures: s.Signatures,
			Status:     s.Status,
		}
	}
	return specs
}

// RpcConfig Solana JSON-RPC 节点配置
type RpcConfig struct {
	Endpoint   string `yaml:"endpoint"`    // 如 https://api.mainnet-beta.solana.com
	TimeoutSec int    `yaml:"timeout_sec"` // 单次请求超时（秒）
}

// RedisConfig 命中交易的签名判重
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	SignatureTTLSec int    `yaml:"signature_ttl_sec"` // 签名判重 key 的过期时间（秒）
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers    string `yaml:"brokers"`    // Kafka broker 地址，多个用英文逗号分隔
	BatchSize  int    `yaml:"batch_size"` // 批处理大小（单位字节）
	LingerMs   int    `yaml:"linger_ms"`  // 批处理最大延迟（毫秒）
	Topic      string `yaml:"topic"`      // 命中交易的 Kafka topic
	Partitions int    `yaml:"partitions"` // topic 的分区数
}

// TimeConfig 表示各种超时配置（单位：毫秒）
type TimeConfig struct {
	SlotDispatchTimeoutMs int `yaml:"slot_dispatch_timeout_ms"` // 每个 slot 的处理最大耗时（Redis + Kafka）
	EventSendTimeoutMs    int `yaml:"event_send_timeout_ms"`    // 单条消息发送到 Kafka 并等待 ack 的超时时间
}

// GrpcConfig gRPC（Yellowstone Geyser）客户端连接相关配置
type GrpcConfig struct {
	Endpoint string `yaml:"endpoint"` // gRPC 服务端地址
	XToken   string `yaml:"x_token"`  // x-token 认证

	// 订阅过滤：区块中至少涉及其中一个账户的交易才会推送，为空时使用 Token / Token-2022 程序
	AccountInclude []string `yaml:"account_include"`

	// 应用级逻辑心跳（ping）配置
	StreamPingIntervalSec int `yaml:"stream_ping_interval_sec"` // 应用层 ping 心跳间隔（秒）

	// gRPC Keepalive 底层连接检测配置
	KeepalivePingIntervalSec int `yaml:"keepalive_ping_interval_sec"` // 底层 keepalive 间隔（秒）
	KeepalivePingTimeoutSec  int `yaml:"keepalive_ping_timeout_sec"`  // 底层 keepalive 超时（秒）

	// gRPC 窗口大小调优（用于大数据流推送）
	InitialWindowSize     int `yaml:"initial_window_size"`      // 单流窗口大小（字节）
	InitialConnWindowSize int `yaml:"initial_conn_window_size"` // 整体连接窗口大小（字节）

	// 消息体大小限制
	MaxCallSendMsgSize int `yaml:"max_call_send_msg_size"` // 单条消息最大发送字节数
	MaxCallRecvMsgSize int `yaml:"max_call_recv_msg_size"` // 单条消息最大接收字节数

	// 超时与重连策略
	ReconnectIntervalSec int `yaml:"reconnect_interval_sec"` // 重连最小间隔（秒）
	ConnectTimeoutSec    int `yaml:"connect_timeout_sec"`    // 连接建立超时（秒）
	SendTimeoutSec       int `yaml:"send_timeout_sec"`       // 发送超时（秒）
	BlockRecvTimeoutSec  int `yaml:"block_recv_timeout_sec"` // 超过该时间未收到 block 触发重连（秒）
}

// Config 是主配置结构体，txfilter 命令行与 grpc 流服务共用
type Config struct {
	LogConf           LogConfig           `yaml:"logger"`         // 日志配置
	FilterConf        FilterConfig        `yaml:"filter"`         // 过滤器配置
	RpcConf           RpcConfig           `yaml:"rpc"`            // RPC 拉取配置
	KafkaProducerConf KafkaProducerConfig `yaml:"kafka_producer"` // Kafka 生产者配置
	RedisConf         RedisConfig         `yaml:"redis"`          // Redis 配置
	TimeConf          TimeConfig          `yaml:"time_conf"`      // 时间相关配置

	ProgressConf struct {
		RecentThresholdSec int `yaml:"recent_threshold_sec"` // 判定为“近期 block”的时间阈值（秒）
	} `yaml:"progress"`

	Grpc GrpcConfig `yaml:"grpc"`
}

// Load 读取 yaml 配置文件并补全默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// MustLoad 同 Load，失败时 panic
func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LogConf.Format == "" {
		c.LogConf.Format = "console"
	}
	if c.LogConf.Level == "" {
		c.LogConf.Level = "info"
	}
	if c.RpcConf.TimeoutSec <= 0 {
		c.RpcConf.TimeoutSec = 30
	}
	if c.RedisConf.SignatureTTLSec <= 0 {
		c.RedisConf.SignatureTTLSec = 24 * 3600
	}
	if c.KafkaProducerConf.Partitions <= 0 {
		c.KafkaProducerConf.Partitions = 1
	}
	if c.TimeConf.SlotDispatchTimeoutMs <= 0 {
		c.TimeConf.SlotDispatchTimeoutMs = 800
	}
	if c.TimeConf.EventSendTimeoutMs <= 0 {
		c.TimeConf.EventSendTimeoutMs = 600
	}
	if c.ProgressConf.RecentThresholdSec <= 0 {
		c.ProgressConf.RecentThresholdSec = 60
	}
	c.Grpc.applyDefaults()
}

func (g *GrpcConfig) applyDefaults() {
	g.Endpoint = strings.TrimSpace(g.Endpoint)
	if g.StreamPingIntervalSec <= 0 {
		g.StreamPingIntervalSec = 10
	}
	if g.KeepalivePingIntervalSec <= 0 {
		g.KeepalivePingIntervalSec = 30
	}
	if g.KeepalivePingTimeoutSec <= 0 {
		g.KeepalivePingTimeoutSec = 10
	}
	if g.InitialWindowSize <= 0 {
		g.InitialWindowSize = 1 << 30
	}
	if g.InitialConnWindowSize <= 0 {
		g.InitialConnWindowSize = 1 << 30
	}
	if g.MaxCallSendMsgSize <= 0 {
		g.MaxCallSendMsgSize = 64 * 1024 * 1024
	}
	if g.MaxCallRecvMsgSize <= 0 {
		g.MaxCallRecvMsgSize = 64 * 1024 * 1024
	}
	if g.ReconnectIntervalSec <= 0 {
		g.ReconnectIntervalSec = 1
	}
	if g.ConnectTimeoutSec <= 0 {
		g.ConnectTimeoutSec = 10
	}
	if g.SendTimeoutSec <= 0 {
		g.SendTimeoutSec = 5
	}
	if g.BlockRecvTimeoutSec <= 0 {
		g.BlockRecvTimeoutSec = 30
	}
}

package consts

import "runtime"

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()

// 事件类型前缀（写入 Kafka 的消息前 4 字节）
const (
	EventTypeMatchedTx uint32 = 1 // 命中过滤管道的交易（protobuf 原始交易）
)

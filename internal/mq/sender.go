package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaJob 表示一笔命中交易对应的 Kafka 消息
type KafkaJob struct {
	Topic     string
	Partition int32
	Signature string // base58 签名，同时作为消息 key，便于消费端去重
	Value     []byte
}

// Producer 是 *kafka.Producer 中发送所需的最小接口
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// KafkaSendResult 表示单条消息的失败原因
type KafkaSendResult struct {
	Job *KafkaJob
	Err error
}

// SendReport 汇总一批消息的投递结果
type SendReport struct {
	Sent   []*KafkaJob
	Failed []KafkaSendResult
}

// FailedSignatures 返回投递失败的交易签名，调用方据此释放判重占位
func (r SendReport) FailedSignatures() []string {
	if len(r.Failed) == 0 {
		return nil
	}
	sigs := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		sigs[i] = f.Job.Signature
	}
	return sigs
}

var errDeliveryClosed = errors.New("delivery channel closed unexpectedly")

// SendKafkaJobs 并发投递一批消息，结果顺序与 jobs 一致
func SendKafkaJobs(
	ctx context.Context,
	producer Producer,
	jobs []*KafkaJob,
	perMessageTimeout time.Duration,
) SendReport {
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job *KafkaJob) {
			defer wg.Done()
			errs[i] = deliver(ctx, producer, job, perMessageTimeout)
		}(i, job)
	}
	wg.Wait()

	var report SendReport
	for i, job := range jobs {
		if errs[i] != nil {
			report.Failed = append(report.Failed, KafkaSendResult{Job: job, Err: errs[i]})
		} else {
			report.Sent = append(report.Sent, job)
		}
	}
	return report
}

// deliver 投递单条消息并等待 broker 回执
func deliver(ctx context.Context, producer Producer, job *KafkaJob, timeout time.Duration) error {
	deliveryChan := make(chan kafka.Event, 1)
	err := producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &job.Topic,
			Partition: job.Partition,
		},
		Key:   []byte(job.Signature),
		Value: job.Value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce tx=%s: %w", job.Signature, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e, ok := <-deliveryChan:
		if !ok {
			return errDeliveryClosed
		}
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("invalid delivery event: %T", e)
		}
		return msg.TopicPartition.Error
	case <-timer.C:
		go safeDrain(deliveryChan)
		return fmt.Errorf("delivery timeout (>%v)", timeout)
	case <-ctx.Done():
		go safeDrain(deliveryChan)
		return fmt.Errorf("ctx cancelled: %w", ctx.Err())
	}
}

// safeDrain 等待迟到的回执，避免 Kafka 回调阻塞
func safeDrain(ch <-chan kafka.Event) {
	defer func() {
		_ = recover()
	}()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
	}
}

package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProducer 按签名决定投递行为："ok" 成功，"fail" 返回分区错误，"reject" Produce 直接失败，其它不回执
type fakeProducer struct {
	mu   sync.Mutex
	sent []*kafka.Message
}

func (f *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()

	switch string(msg.Key) {
	case "ok":
		deliveryChan <- msg
	case "fail":
		failed := *msg
		failed.TopicPartition.Error = errors.New("broker unavailable")
		deliveryChan <- &failed
	case "reject":
		return errors.New("queue full")
	}
	return nil
}

func TestSendKafkaJobs(t *testing.T) {
	producer := &fakeProducer{}
	jobs := []*KafkaJob{
		{Topic: "t", Partition: 1, Signature: "ok", Value: []byte{1}},
		{Topic: "t", Partition: 2, Signature: "fail", Value: []byte{2}},
		{Topic: "t", Partition: 3, Signature: "reject", Value: []byte{3}},
		{Topic: "t", Partition: 4, Signature: "silent", Value: []byte{4}},
	}

	report := SendKafkaJobs(context.Background(), producer, jobs, 50*time.Millisecond)
	require.Len(t, report.Sent, 1)
	assert.Equal(t, int32(1), report.Sent[0].Partition)
	assert.Len(t, report.Failed, 3)
	assert.Equal(t, []string{"fail", "reject", "silent"}, report.FailedSignatures())
	assert.Len(t, producer.sent, 4)

	for _, msg := range producer.sent {
		assert.Equal(t, "t", *msg.TopicPartition.Topic)
		assert.NotEmpty(t, msg.Key)
		assert.NotEmpty(t, msg.Value)
	}
}

func TestSendReportFailedSignaturesEmpty(t *testing.T) {
	assert.Nil(t, SendReport{Sent: []*KafkaJob{{Signature: "ok"}}}.FailedSignatures())
}

func TestSendKafkaJobsContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := SendKafkaJobs(ctx, &fakeProducer{}, []*KafkaJob{{Topic: "t", Signature: "silent"}}, time.Minute)
	assert.Empty(t, report.Sent)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0].Err, context.Canceled)
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/config"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
	"github.com/Igorithmltd/muta-app-backend-sub001/pkg/log"
)

// KafkaStore appends message records to a durable topic. Append blocks
// until the broker acknowledges the write, bounded by the configured
// delivery timeout, so callers can report failures to the sender.
type KafkaStore struct {
	producer        *kafka.Producer
	topic           string
	deliveryTimeout time.Duration
	doneCh          chan struct{}
}

func NewKafkaStore(cfg config.KafkaConfig) (*KafkaStore, error) {
	if err := ensureTopic(cfg.Brokers, cfg.Topic, cfg.Partitions); err != nil {
		log.L().Warn().Err(err).Str("topic", cfg.Topic).Msg("failed to ensure topic (may already exist)")
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	timeout := cfg.DeliveryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &KafkaStore{
		producer:        p,
		topic:           cfg.Topic,
		deliveryTimeout: timeout,
		doneCh:          make(chan struct{}),
	}

	go s.deliveryReportHandler()

	return s, nil
}

func ensureTopic(brokers, topic string, partitions int) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{
		{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		},
	})
	if err != nil {
		return err
	}

	for _, result := range results {
		if result.Error.Code() != kafka.ErrNoError && result.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", result.Topic, result.Error)
		}
	}

	return nil
}

// deliveryReportHandler drains producer-level events. Per-message
// delivery reports go to the channel Append hands to Produce, so this
// only sees transport errors and stray reports.
func (s *KafkaStore) deliveryReportHandler() {
	for e := range s.producer.Events() {
		switch ev := e.(type) {
		case kafka.Error:
			log.L().Error().Err(ev).Msg("kafka producer error")
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				log.L().Error().Err(ev.TopicPartition.Error).Msg("kafka delivery failed")
			}
		}
	}
	close(s.doneCh)
}

func (s *KafkaStore) Append(ctx context.Context, msg *domain.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Room id as key keeps a room's messages on one partition.
	deliveryCh := make(chan kafka.Event, 1)
	err = s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &s.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(msg.FanoutRoom()),
		Value: value,
	}, deliveryCh)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	return awaitDelivery(ctx, deliveryCh, s.deliveryTimeout)
}

// awaitDelivery blocks until the broker acknowledges the produced
// message, the context is cancelled, or the timeout expires.
func awaitDelivery(ctx context.Context, deliveryCh <-chan kafka.Event, timeout time.Duration) error {
	select {
	case e := <-deliveryCh:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("kafka delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return fmt.Errorf("timed out waiting for kafka delivery report after %s", timeout)
	}
}

func (s *KafkaStore) Close() error {
	s.producer.Flush(5000)
	s.producer.Close()
	<-s.doneCh
	return nil
}

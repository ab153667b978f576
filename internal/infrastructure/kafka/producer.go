// Package kafka is the bus adapter: a producer set keyed by topic on the
// publish side, a bounded-concurrency consumer loop on the subscribe side,
// and topic bootstrap for fresh brokers.
package kafka

import (
	"context"
	"fmt"
	"sync"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/config"
	"github.com/yokitheyo/imagestore/internal/retry"
)

// Bus publishes raw payloads to named topics, creating one producer per
// topic on first use. It backs the in-process event bridge.
type Bus struct {
	brokers []string

	mu        sync.Mutex
	producers map[string]*wbfkafka.Producer
}

func NewBus(cfg config.KafkaConfig) *Bus {
	zlog.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Msg("kafka bus initialized")

	return &Bus{
		brokers:   cfg.Brokers,
		producers: make(map[string]*wbfkafka.Producer),
	}
}

func (b *Bus) producer(topic string) *wbfkafka.Producer {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.producers[topic]
	if !ok {
		p = wbfkafka.NewProducer(b.brokers, topic)
		b.producers[topic] = p
	}
	return p
}

// Publish sends the payload with the shared retry strategy. The key is
// left empty, ordering across partitions is not relied on.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.producer(topic).SendWithRetry(ctx, retry.DefaultStrategy, nil, payload); err != nil {
		return fmt.Errorf("send to topic %q: %w", topic, err)
	}
	return nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for topic, p := range b.producers {
		if err := p.Close(); err != nil {
			zlog.Logger.Error().Err(err).Str("topic", topic).Msg("failed to close producer")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

package kafka

import (
	"context"
	"sync"
	"time"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/config"
	"github.com/yokitheyo/imagestore/internal/retry"
)

// MessageHandler processes one raw message payload. A nil return commits
// the offset; an error leaves the message uncommitted for redelivery.
type MessageHandler func(ctx context.Context, payload []byte) error

// Consumer runs one consumer-group reader for one topic and fans messages
// out to a bounded number of handler goroutines.
type Consumer struct {
	client  *wbfkafka.Consumer
	topic   string
	handler MessageHandler
	limit   int
}

func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	client := wbfkafka.NewConsumer(cfg.Brokers, topic, cfg.GroupID)

	zlog.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", topic).
		Str("group_id", cfg.GroupID).
		Int("max_concurrency", cfg.MaxConcurrency).
		Msg("kafka consumer initialized")

	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}

	return &Consumer{
		client:  client,
		topic:   topic,
		handler: handler,
		limit:   limit,
	}
}

// Start fetches until the context is canceled. Handlers run concurrently
// up to the configured limit; each message is committed by its own
// goroutine only after the handler succeeds.
func (c *Consumer) Start(ctx context.Context) error {
	sem := make(chan struct{}, c.limit)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			zlog.Logger.Info().Str("topic", c.topic).Msg("kafka consumer stopped")
			return nil
		default:
		}

		msg, err := c.client.FetchWithRetry(ctx, retry.DefaultStrategy)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			zlog.Logger.Error().Err(err).Str("topic", c.topic).Msg("failed to fetch message")
			time.Sleep(time.Second)
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := c.handler(ctx, msg.Value); err != nil {
				zlog.Logger.Error().
					Err(err).
					Str("topic", c.topic).
					Msg("message handling failed, offset not committed")
				return
			}

			if err := c.client.Commit(ctx, msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Str("topic", c.topic).
					Msg("failed to commit offset")
			}
		}()
	}
}

func (c *Consumer) Close() error {
	if err := c.client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Str("topic", c.topic).Msg("failed to close consumer")
		return err
	}
	return nil
}

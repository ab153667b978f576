package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"
)

// WaitReady blocks until the broker accepts a TCP dial or the context
// expires. Compose setups regularly start the services before the broker.
func WaitReady(ctx context.Context, brokerAddr string) error {
	for {
		conn, err := kafkago.Dial("tcp", brokerAddr)
		if err == nil {
			if cerr := conn.Close(); cerr != nil {
				zlog.Logger.Warn().Err(cerr).Msg("failed to close kafka probe connection")
			}
			zlog.Logger.Info().Str("broker", brokerAddr).Msg("kafka is ready")
			return nil
		}

		zlog.Logger.Warn().Err(err).Str("broker", brokerAddr).Msg("kafka not ready, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

// InitTopics creates the given topics, retrying until every one exists or
// the context expires. Already-existing topics count as success.
func InitTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) error {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}
	for _, t := range topics {
		req.Topics = append(req.Topics, kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := client.CreateTopics(ctx, &req)
		if err != nil {
			zlog.Logger.Warn().
				Err(err).
				Dur("delay", delay).
				Msg("topic creation request failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		ok := 0
		for topic, terr := range resp.Errors {
			switch {
			case terr == nil, errors.Is(terr, kafkago.TopicAlreadyExists):
				ok++
			default:
				zlog.Logger.Error().Err(terr).Str("topic", topic).Msg("topic creation error")
			}
		}

		if ok == len(resp.Errors) {
			zlog.Logger.Info().Strs("topics", topics).Msg("kafka topics ready")
			return nil
		}
	}
}

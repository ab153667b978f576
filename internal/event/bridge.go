package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
)

// BusPublisher is the transport side of the bridge, implemented by the
// kafka producer set.
type BusPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// BusBridge returns a handler that re-publishes a domain event onto the
// external topic of the same name.
func BusBridge(pub BusPublisher) HandlerFunc {
	return func(ctx context.Context, e domain.Event) error {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event for topic %q: %w", e.Topic(), err)
		}

		if err := pub.Publish(ctx, e.Topic(), payload); err != nil {
			return fmt.Errorf("%w: topic %q: %w", domain.ErrPublishFailed, e.Topic(), err)
		}

		zlog.Logger.Info().
			Str("topic", e.Topic()).
			Msg("domain event bridged to bus")
		return nil
	}
}

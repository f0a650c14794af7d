package service

import (
	"context"

	"github.com/Skotchmaster/apparel_shop/pkg/events"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

// publish is best effort: the write behind the event is already committed.
func publish(ctx context.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}

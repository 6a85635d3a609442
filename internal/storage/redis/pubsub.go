package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ChannelKey names the realtime channel for inserts into table that match
// filter, e.g. ChannelKey("notifications", "user-1").
func ChannelKey(table, filter string) string {
	return fmt.Sprintf("realtime:%s:%s", table, filter)
}

// Publish sends value as JSON to every subscriber of the channel.
func (c *Cache) Publish(ctx context.Context, table, filter string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	channel := ChannelKey(table, filter)
	if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
		c.logger.Error("failed to publish",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// Subscribe calls onInsert with the raw JSON of every message published on
// the channel until ctx is done or the returned unsubscribe is called.
func (c *Cache) Subscribe(ctx context.Context, table, filter string, onInsert func([]byte)) (func(), error) {
	channel := ChannelKey(table, filter)
	sub := c.client.Subscribe(ctx, channel)

	// wait for the subscription to be confirmed so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				onInsert([]byte(msg.Payload))
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			<-done
			if err := sub.Close(); err != nil {
				c.logger.Warn("failed to close subscription",
					zap.String("channel", channel),
					zap.Error(err),
				)
			}
		})
	}

	return unsubscribe, nil
}

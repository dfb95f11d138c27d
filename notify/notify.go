// Package notify tells peer processes that the routing version moved, so they check
// early instead of waiting for their next poll. Peers must not depend on delivery.
package notify

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultChannel is the redis channel carrying routing versions.
const DefaultChannel = "endpoint:routing:version"

type Notifier interface {
	Publish(ctx context.Context, version int64) error
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Publish(context.Context, int64) error { return nil }

// Func adapts a function to Notifier.
type Func func(ctx context.Context, version int64) error

func (f Func) Publish(ctx context.Context, version int64) error { return f(ctx, version) }

type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Publish(ctx context.Context, version int64) error {
	return n.client.Publish(ctx, n.channel, strconv.FormatInt(version, 10)).Err()
}

// Subscribe calls onVersion for each published version until ctx is done.
// Malformed payloads are logged and ignored.
func (n *RedisNotifier) Subscribe(ctx context.Context, onVersion func(int64)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			v, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				logrus.WithField("payload", msg.Payload).Warn("notify: ignoring malformed version")
				continue
			}
			onVersion(v)
		}
	}
}

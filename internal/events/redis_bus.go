package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linskybing/grant-review/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

// RedisBus publishes events on a Redis channel so every API replica can
// forward them to its own Hub.
type RedisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

func NewRedisBus(opts RedisOptions, log *logger.Logger) (*RedisBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.Channel == "" {
		opts.Channel = "grant-review.events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisBusWithClient(rdb, opts.Channel, log), nil
}

func NewRedisBusWithClient(rdb *goredis.Client, channel string, log *logger.Logger) *RedisBus {
	return &RedisBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *RedisBus) Publish(ctx context.Context, evt Event) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and calls onEvent for each
// message until ctx is cancelled.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
					b.log.Warn("bad redis event payload", "error", err)
					continue
				}
				onEvent(evt)
			}
		}
	}()
	return nil
}

func (b *RedisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

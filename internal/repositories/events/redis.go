package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/datkingvn/pvoil-sub000/internal/common/clock"
	"github.com/redis/go-redis/v9"
)

const (
	// Channel prefix for Redis pub/sub
	channelPrefix = "show:"
	channelSuffix = ":events"

	subscriptionBuffer = 16
)

// Config holds configuration for the Redis event bus
type Config struct {
	RedisClient *redis.Client
	Clock       clock.Clock
}

// redisBus implements Publisher and Subscriber using Redis pub/sub
type redisBus struct {
	client *redis.Client
	clock  clock.Clock
}

// NewRedis creates a new Redis-backed event bus
func NewRedis(cfg *Config) (*redisBus, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	c := cfg.Clock
	if c == nil {
		c = &clock.DefaultClock{}
	}

	return &redisBus{
		client: cfg.RedisClient,
		clock:  c,
	}, nil
}

func channelFor(showID string) string {
	return channelPrefix + showID + channelSuffix
}

// Publish marshals the state and publishes it on the show channel
func (b *redisBus) Publish(ctx context.Context, input *PublishInput) error {
	if input == nil || input.ShowID == "" {
		return errors.New("input and show ID cannot be empty")
	}

	state, err := json.Marshal(input.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	body, err := json.Marshal(&Event{
		ShowID: input.ShowID,
		Round:  input.Round,
		Action: input.Action,
		State:  state,
		At:     b.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, channelFor(input.ShowID), body).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe listens on the show channel; undecodable messages are dropped
func (b *redisBus) Subscribe(ctx context.Context, input *SubscribeInput) (*Subscription, error) {
	if input == nil || input.ShowID == "" {
		return nil, errors.New("input and show ID cannot be empty")
	}

	subCtx, cancel := context.WithCancel(ctx)
	pubsub := b.client.Subscribe(subCtx, channelFor(input.ShowID))

	// Wait for the subscription confirmation so no event is missed afterwards
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan *Event, subscriptionBuffer)
	ch := pubsub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		Events: out,
		Close: func() error {
			cancel()
			return pubsub.Close()
		},
	}, nil
}

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "lobby:room:"
	publishTimeout = 5 * time.Second
)

// roomEnvelope is the message published to a room's Redis channel.
type roomEnvelope struct {
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
	Exclude string          `json:"exclude,omitempty"`
	At      int64           `json:"at"`
}

// RedisPubSub bridges room broadcasts over Redis pub/sub, decoupling the
// hub's fan-out from its in-process room map.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for room events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, logger: logger}
}

// PublishRoomEvent publishes an event to the room's channel. exclude names a
// connection the subscriber must skip on delivery (the move-relay sender).
func (r *RedisPubSub) PublishRoomEvent(roomID, event, exclude string, payload []byte) error {
	body, err := json.Marshal(roomEnvelope{Event: event, Data: payload, Exclude: exclude, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, channelPrefix+roomID, body).Err()
}

// SubscribeRoom subscribes to a room's channel and calls handler for each
// message. Returns a cancel function to stop the subscription.
func (r *RedisPubSub) SubscribeRoom(roomID string, handler func(event, exclude string, payload []byte)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, channelPrefix+roomID)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe room %s: %w", roomID, err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env roomEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					r.logger.Warn("bad room envelope", zap.String("room_id", roomID), zap.Error(err))
					continue
				}
				handler(env.Event, env.Exclude, env.Data)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}

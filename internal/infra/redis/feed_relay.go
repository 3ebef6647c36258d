package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

const (
	feedChannel    = keyPrefix + "feed"
	publishTimeout = time.Second
)

type relayMessage struct {
	Origin string       `json:"origin"`
	Match  domain.Match `json:"match"`
}

// FeedRelay bridges the in-process MatchFeed of several instances over Redis pub/sub,
// so a projector connected to one instance sees moves made through another.
// Delivery is best effort, like the local feed.
type FeedRelay struct {
	client *redis.Client
	feed   *app.MatchFeed
	origin string
	logger zerolog.Logger
}

func NewFeedRelay(client *redis.Client, feed *app.MatchFeed, logger zerolog.Logger) *FeedRelay {
	return &FeedRelay{
		client: client,
		feed:   feed,
		origin: uuid.NewString(),
		logger: logger.With().Str("component", "feed_relay").Logger(),
	}
}

// Start subscribes to the relay channel, hooks the feed forwarder and relays remote
// snapshots into the local feed until ctx is done.
func (r *FeedRelay) Start(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, feedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", feedChannel, err)
	}
	r.feed.SetForwarder(r.forward)
	go r.loop(ctx, sub)
	return nil
}

func (r *FeedRelay) loop(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil {
				r.logger.Warn().Err(err).Msg("dropping malformed relay message")
				continue
			}
			if rm.Origin == r.origin {
				continue
			}
			r.feed.Deliver(rm.Match)
		}
	}
}

func (r *FeedRelay) forward(m domain.Match) {
	data, err := json.Marshal(relayMessage{Origin: r.origin, Match: m})
	if err != nil {
		r.logger.Warn().Err(err).Str("match_id", m.ID).Msg("encode relay message")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, feedChannel, data).Err(); err != nil {
		r.logger.Warn().Err(err).Str("match_id", m.ID).Msg("relay publish failed")
	}
}

package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/utils/safe"
)

// DefaultChannelPrefix is the default Redis channel prefix
const DefaultChannelPrefix = "auditflow:notifications"

// ErrNoSubscriber is returned when a message reached no subscriber, so the
// user has no open realtime session
var ErrNoSubscriber = goerr.New("no realtime subscriber for user")

// Message is the payload published for each notification
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Link      string            `json:"link,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Publisher pushes notifications to per-user Redis channels that web
// gateways subscribe to
type Publisher struct {
	client *redis.Client
	prefix string
}

var _ interfaces.Pusher = &Publisher{}

// Option is a functional option for Publisher
type Option func(*Publisher)

// WithChannelPrefix sets the channel prefix
func WithChannelPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// New connects to Redis at url and verifies the connection
func New(ctx context.Context, url string, opts ...Option) (*Publisher, error) {
	if url == "" {
		return nil, goerr.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse redis URL")
	}

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "redis ping failed", goerr.V("addr", redisOpts.Addr))
	}

	return NewWithClient(client, opts...), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		prefix: DefaultChannelPrefix,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the channel name for a user of a tenant
func (p *Publisher) Channel(tenantID string, userID model.UserID) string {
	return p.prefix + ":" + tenantID + ":" + string(userID)
}

// Push publishes the notification on the user's channel
func (p *Publisher) Push(ctx context.Context, user *model.User, n *model.Notification) error {
	raw, err := json.Marshal(Message{
		ID:        string(n.ID),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode notification", goerr.V("notification_id", n.ID))
	}

	channel := p.Channel(n.TenantID, user.ID)
	receivers, err := p.client.Publish(ctx, channel, raw).Result()
	if err != nil {
		return goerr.Wrap(err, "failed to publish notification",
			goerr.V("notification_id", n.ID), goerr.V("channel", channel))
	}
	if receivers == 0 {
		return goerr.Wrap(ErrNoSubscriber, "notification was not received",
			goerr.V("notification_id", n.ID), goerr.V("channel", channel))
	}

	return nil
}

// Subscribe opens a subscription on the user's channel. The caller must
// close the returned PubSub.
func (p *Publisher) Subscribe(ctx context.Context, tenantID string, userID model.UserID) *redis.PubSub {
	return p.client.Subscribe(ctx, p.Channel(tenantID, userID))
}

// Listen subscribes to the user's channel and forwards raw payloads until
// ctx is done. The subscription is confirmed before Listen returns.
func (p *Publisher) Listen(ctx context.Context, tenantID string, userID model.UserID) (<-chan []byte, error) {
	sub := p.Subscribe(ctx, tenantID, userID)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, goerr.Wrap(err, "failed to subscribe", goerr.V("channel", p.Channel(tenantID, userID)))
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer safe.Close(ctx, sub)

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Health checks the Redis connection
func (p *Publisher) Health(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (p *Publisher) Close() error {
	return p.client.Close()
}

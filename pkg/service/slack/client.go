package slack

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for the email to user cache
	DefaultCacheTTL = 10 * time.Minute
)

// cacheEntry holds a cached user with expiration
type cacheEntry struct {
	user      *User
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api      *slack.Client
	apiURL   string
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for the user cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiURL = url
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// LookupUserByEmail resolves a Slack user by email, caching hits for cacheTTL
func (c *client) LookupUserByEmail(ctx context.Context, email string) (*User, error) {
	key := strings.ToLower(email)
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.user, nil
	}

	u, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up Slack user by email", goerr.V("email", email))
	}

	user := &User{
		ID:       u.ID,
		Name:     u.Name,
		RealName: u.RealName,
		Email:    u.Profile.Email,
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{user: user, expiresAt: now.Add(c.cacheTTL)}
	c.mu.Unlock()

	return user, nil
}

// PostDirectMessage posts a message to the user's DM channel. Slack opens
// the IM channel implicitly when a user ID is given as the channel.
func (c *client) PostDirectMessage(ctx context.Context, slackUserID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, slackUserID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post Slack direct message", goerr.V("slack_user_id", slackUserID))
	}
	return ts, nil
}

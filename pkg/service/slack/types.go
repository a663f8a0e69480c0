package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides the subset of the Slack API used for realtime
// notification delivery
type Service interface {
	// LookupUserByEmail resolves a workspace member by email (with caching)
	LookupUserByEmail(ctx context.Context, email string) (*User, error)

	// PostDirectMessage posts a Block Kit message to the user's DM channel and
	// returns the message timestamp. The text parameter is used as a fallback
	// for notifications.
	PostDirectMessage(ctx context.Context, slackUserID string, blocks []slack.Block, text string) (string, error)
}

// User represents a Slack user
type User struct {
	ID       string
	Name     string
	RealName string
	Email    string
}

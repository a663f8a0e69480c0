package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/slack-go/slack"
)

// ErrNoSlackIdentity is returned when a user has neither a Slack user ID
// nor an email to look one up with
var ErrNoSlackIdentity = goerr.New("user has no Slack identity")

// Pusher delivers notifications as Slack direct messages
type Pusher struct {
	svc     Service
	baseURL string
}

var _ interfaces.Pusher = &Pusher{}

// NewPusher creates a Pusher. baseURL is prepended to relative notification
// links; an empty baseURL leaves links out of the message.
func NewPusher(svc Service, baseURL string) *Pusher {
	return &Pusher{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Push sends the notification to the user's Slack DM
func (p *Pusher) Push(ctx context.Context, user *model.User, n *model.Notification) error {
	slackUserID, err := p.resolveSlackUserID(ctx, user)
	if err != nil {
		return err
	}

	blocks := buildNotificationBlocks(n, p.linkURL(n.Link))
	if _, err := p.svc.PostDirectMessage(ctx, slackUserID, blocks, n.Title); err != nil {
		return goerr.Wrap(err, "failed to push notification to Slack",
			goerr.V("notification_id", n.ID), goerr.V("user_id", user.ID))
	}
	return nil
}

func (p *Pusher) resolveSlackUserID(ctx context.Context, user *model.User) (string, error) {
	if user.SlackUserID != "" {
		return user.SlackUserID, nil
	}
	if user.Email == "" {
		return "", goerr.Wrap(ErrNoSlackIdentity, "cannot resolve Slack user", goerr.V("user_id", user.ID))
	}

	su, err := p.svc.LookupUserByEmail(ctx, user.Email)
	if err != nil {
		return "", goerr.Wrap(err, "cannot resolve Slack user", goerr.V("user_id", user.ID))
	}
	return su.ID, nil
}

func (p *Pusher) linkURL(link string) string {
	if link == "" || p.baseURL == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return p.baseURL + "/" + strings.TrimLeft(link, "/")
}

func buildNotificationBlocks(n *model.Notification, url string) []slack.Block {
	text := fmt.Sprintf("*%s*\n%s", n.Title, n.Message)
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
	}

	if url != "" {
		link := slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|Open in auditflow>", url), false, false)
		blocks = append(blocks, slack.NewContextBlock("", link))
	}

	return blocks
}

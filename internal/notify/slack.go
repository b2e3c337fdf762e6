package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/openclaw/missionctl/internal/models"
	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Slack posts alert events to a Slack channel as colored attachments.
type Slack struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a Slack notifier.
type SlackOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // channel to post alerts to
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// NewSlack creates a Slack notifier.
func NewSlack(opts SlackOpts) (*Slack, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: slack bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: slack channel is required")
	}
	s := &Slack{client: opts.Client, channelID: opts.ChannelID}
	if s.client == nil {
		s.client = slackapi.New(opts.BotToken)
	}
	return s, nil
}

// Notify implements Notifier.
func (s *Slack) Notify(ctx context.Context, evt models.Event) error {
	att := slackapi.Attachment{
		Title:    evt.Title,
		Text:     eventBody(evt),
		Color:    severityColor(evt.Severity),
		Fallback: evt.Title,
		Footer:   evt.Source,
		Ts:       json.Number(strconv.FormatInt(evt.OccurredAt.Unix(), 10)),
	}
	_, _, err := s.client.PostMessageContext(ctx, s.channelID, slackapi.MsgOptionAttachments(att))
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	return nil
}

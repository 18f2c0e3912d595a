package slack

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Payload is the JSON body posted to the webhook.
type Payload struct {
	Text string `json:"text"`
}

// Notifier posts messages to a Slack compatible incoming webhook.
type Notifier struct {
	client *resty.Client
	url    string
}

// NewNotifier creates a new *Notifier for the webhook URL.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		client: resty.New(),
		url:    url,
	}
}

// Send implements notify.Interface.
func (n *Notifier) Send(ctx context.Context, text string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(Payload{Text: text}).
		Post(n.url)
	if err != nil {
		return errors.Wrapf(err, "failed to post to webhook")
	}

	if resp.StatusCode() >= 400 {
		return errors.Errorf("webhook returned HTTP %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

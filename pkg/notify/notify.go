package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bonial-oss/change-monitor/pkg/notify/email"
	"github.com/bonial-oss/change-monitor/pkg/notify/null"
	"github.com/bonial-oss/change-monitor/pkg/notify/slack"
	"github.com/pkg/errors"
)

// DefaultTitle is the header line of every notification.
const DefaultTitle = "Wachete notification"

// Schemes lists all supported notification URL schemes. http and https URLs
// are treated as Slack compatible incoming webhooks.
var Schemes = []string{"http", "https", "smtp", "smtps", "null"}

// Interface is the interface for a notification channel.
type Interface interface {
	// Send delivers text to the channel. Must return an error if the
	// delivery fails.
	Send(ctx context.Context, text string) error
}

// New creates the notifier for rawURL. Returns an error if the URL is
// invalid or its scheme is not supported. New does not perform any I/O.
func New(rawURL string) (Interface, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid notification URL")
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return slack.NewNotifier(rawURL), nil
	case "smtp", "smtps":
		return email.NewNotifier(u)
	case "null":
		return &null.Notifier{}, nil
	default:
		return nil, errors.Errorf("unsupported notifier %q", u.Scheme)
	}
}

// FormatMessage formats a notification: a title line, a line linking the
// monitor name to its URL and the payload.
func FormatMessage(title, name, monitorURL, payload string) string {
	if title == "" {
		title = DefaultTitle
	}

	return fmt.Sprintf("%s \nName: <%s|%s>\n%s", title, monitorURL, name, payload)
}

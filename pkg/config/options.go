package config

import (
	"encoding/json"
	"time"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/bonial-oss/change-monitor/pkg/notify"
)

// Options contain the complete configuration of a monitor run. Options are
// resolved once at process start and not modified afterwards.
type Options struct {
	// Name identifies the monitor. It is the key of the persisted state and
	// is displayed in notifications.
	Name string `json:"name"`

	// URL is the absolute URL of the monitored resource.
	URL string `json:"url"`

	// Type selects the extraction strategy.
	Type models.MonitorType `json:"type"`

	// Expression is interpreted by the extraction strategy, e.g. an XPath
	// expression for type XPATH.
	Expression string `json:"expression"`

	// NotifyURL identifies the notification channel. http(s) URLs are
	// treated as Slack compatible webhooks.
	NotifyURL string `json:"notifyURL"`

	// StoreURL identifies the state store, e.g. dynamodb://my-table.
	StoreURL string `json:"storeURL"`

	// NotifyTitle is the header line of every notification.
	NotifyTitle string `json:"notifyTitle"`

	// UserAgent is sent with the fetch request if not empty.
	UserAgent string `json:"userAgent"`

	// Headers are additional headers sent with the fetch request.
	Headers map[string]string `json:"headers"`

	// Timeout bounds the fetch request. Zero disables the timeout.
	Timeout Duration `json:"timeout"`

	// FailOnHTTPError treats non-2xx responses as fetch errors.
	FailOnHTTPError bool `json:"failOnHTTPError"`

	// DeleteAfterRun removes the persisted record at the end of a run.
	DeleteAfterRun bool `json:"deleteAfterRun"`

	// PushgatewayURL enables pushing run metrics to a Prometheus
	// Pushgateway.
	PushgatewayURL string `json:"pushgatewayURL"`

	// parseErrors collects malformed optional values found while loading.
	parseErrors []string
}

// NewDefaultOptions creates new default options.
func NewDefaultOptions() *Options {
	return &Options{
		NotifyTitle: notify.DefaultTitle,
		Headers:     map[string]string{},
	}
}

// Duration is a time.Duration that is written as a Go duration string, e.g.
// "30s", in configuration files.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return err
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	d.Duration = duration

	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// Setting is a single resolved configuration value.
type Setting struct {
	Key   string
	Value string
}

// Settings returns the resolved configuration keyed by environment variable
// in a stable order. Passwords in store and notification URLs are redacted.
func (o *Options) Settings() []Setting {
	return []Setting{
		{EnvName, o.Name},
		{EnvURL, o.URL},
		{EnvType, string(o.Type)},
		{EnvExpression, o.Expression},
		{EnvNotifyURL, redact(o.NotifyURL)},
		{EnvStoreURL, redact(o.StoreURL)},
		{EnvNotifyTitle, o.NotifyTitle},
		{EnvUserAgent, o.UserAgent},
		{EnvTimeout, o.Timeout.String()},
		{EnvFailOnHTTPError, formatBool(o.FailOnHTTPError)},
		{EnvDeleteAfterRun, formatBool(o.DeleteAfterRun)},
		{EnvPushgatewayURL, o.PushgatewayURL},
	}
}

// KeysAndValues returns Settings as alternating keys and values for
// structured logging.
func (o *Options) KeysAndValues() []interface{} {
	settings := o.Settings()

	kv := make([]interface{}, 0, 2*len(settings))
	for _, s := range settings {
		kv = append(kv, s.Key, s.Value)
	}

	return kv
}

func formatBool(b bool) string {
	if b {
		return "true"
	}

	return "false"
}

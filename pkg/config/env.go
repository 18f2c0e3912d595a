package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"
)

// Environment variables that configure a monitor run.
const (
	EnvName            = "MONITOR_NAME"
	EnvURL             = "MONITOR_URL"
	EnvType            = "MONITOR_TYPE"
	EnvExpression      = "MONITOR_EXPRESSION"
	EnvNotifyURL       = "MONITOR_NOTIFY_URL"
	EnvStoreURL        = "MONITOR_STORE_URL"
	EnvNotifyTitle     = "MONITOR_NOTIFY_TITLE"
	EnvUserAgent       = "MONITOR_USER_AGENT"
	EnvTimeout         = "MONITOR_TIMEOUT"
	EnvFailOnHTTPError = "MONITOR_FAIL_ON_HTTP_ERROR"
	EnvDeleteAfterRun  = "MONITOR_DELETE_AFTER_RUN"
	EnvPushgatewayURL  = "MONITOR_PUSHGATEWAY_URL"
	EnvConfigFile      = "MONITOR_CONFIG_FILE"

	// EnvSlackWebhookURL is used as notification URL if EnvNotifyURL is not
	// set.
	EnvSlackWebhookURL = "SLACK_WEBHOOK_URL"

	// EnvDynamoDBTable selects the DynamoDB store with the named table if
	// EnvStoreURL is not set.
	EnvDynamoDBTable = "DYNAMODB_TABLE"
)

// LookupFunc looks up the value of a configuration variable. It has the
// signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type binding struct {
	key string
	set func(o *Options, value string) error
}

var bindings = []binding{
	{EnvName, func(o *Options, v string) error { o.Name = v; return nil }},
	{EnvURL, func(o *Options, v string) error { o.URL = v; return nil }},
	{EnvType, func(o *Options, v string) error { o.Type = models.MonitorType(v); return nil }},
	{EnvExpression, func(o *Options, v string) error { o.Expression = v; return nil }},
	{EnvSlackWebhookURL, func(o *Options, v string) error {
		if o.NotifyURL == "" {
			o.NotifyURL = v
		}
		return nil
	}},
	{EnvNotifyURL, func(o *Options, v string) error { o.NotifyURL = v; return nil }},
	{EnvDynamoDBTable, func(o *Options, v string) error {
		if o.StoreURL == "" {
			o.StoreURL = "dynamodb://" + v
		}
		return nil
	}},
	{EnvStoreURL, func(o *Options, v string) error { o.StoreURL = v; return nil }},
	{EnvNotifyTitle, func(o *Options, v string) error { o.NotifyTitle = v; return nil }},
	{EnvUserAgent, func(o *Options, v string) error { o.UserAgent = v; return nil }},
	{EnvTimeout, func(o *Options, v string) error {
		d, err := time.ParseDuration(v)
		o.Timeout = Duration{d}
		return err
	}},
	{EnvFailOnHTTPError, func(o *Options, v string) (err error) {
		o.FailOnHTTPError, err = strconv.ParseBool(v)
		return err
	}},
	{EnvDeleteAfterRun, func(o *Options, v string) (err error) {
		o.DeleteAfterRun, err = strconv.ParseBool(v)
		return err
	}},
	{EnvPushgatewayURL, func(o *Options, v string) error { o.PushgatewayURL = v; return nil }},
}

// Load builds the options from built-in defaults, the optional config file
// named by MONITOR_CONFIG_FILE and the environment, in increasing order of
// precedence. Empty variables are treated as not defined. The legacy
// SLACK_WEBHOOK_URL and DYNAMODB_TABLE variables only fill settings that are
// still empty. Malformed values
// are not returned as error but reported by Validate.
func Load(lookup LookupFunc) (*Options, error) {
	options := NewDefaultOptions()

	if filename, ok := lookup(EnvConfigFile); ok && filename != "" {
		fileOptions, err := ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load config from file")
		}

		err = mergo.Merge(options, fileOptions, mergo.WithOverride)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to merge config")
		}
	}

	for _, b := range bindings {
		value, ok := lookup(b.key)
		if !ok || value == "" {
			continue
		}

		if err := b.set(options, value); err != nil {
			options.parseErrors = append(options.parseErrors, fmt.Sprintf("key(%s) is not a valid value for %s.", value, b.key))
		}
	}

	return options, nil
}

// LoadFromEnv is Load using the process environment.
func LoadFromEnv() (*Options, error) {
	return Load(os.LookupEnv)
}

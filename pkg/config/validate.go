package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/bonial-oss/change-monitor/pkg/notify"
	"github.com/bonial-oss/change-monitor/pkg/store"
)

// ValidationError contains all violations found by the first failing
// validation pass.
type ValidationError struct {
	Violations []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "\n")
}

// validationPass returns the violations of one class of constraints.
type validationPass func(o *Options) []string

var validationPasses = []validationPass{
	validatePresence,
	validateFormat,
	validateMonitorType,
	validateBackends,
}

// Validate validates options in passes: presence of required settings, URL
// and value formats, the monitor type and finally the store and
// notification backends. Every pass collects all of its violations. Returns
// a *ValidationError for the first pass that fails.
func (o *Options) Validate() error {
	for _, pass := range validationPasses {
		if violations := pass(o); len(violations) > 0 {
			return &ValidationError{Violations: violations}
		}
	}

	return nil
}

func validatePresence(o *Options) []string {
	required := []Setting{
		{EnvName, o.Name},
		{EnvURL, o.URL},
		{EnvType, string(o.Type)},
		{EnvExpression, o.Expression},
		{EnvNotifyURL, o.NotifyURL},
		{EnvStoreURL, o.StoreURL},
	}

	var violations []string

	for _, s := range required {
		if s.Value == "" {
			violations = append(violations, fmt.Sprintf("%s is not defined.", s.Key))
		}
	}

	return violations
}

func validateFormat(o *Options) []string {
	urls := []string{o.URL, o.NotifyURL, o.StoreURL}
	if o.PushgatewayURL != "" {
		urls = append(urls, o.PushgatewayURL)
	}

	var violations []string

	for _, value := range urls {
		if !isValidURL(value) {
			violations = append(violations, fmt.Sprintf("key(%s) is not a valid URL.", value))
		}
	}

	return append(violations, o.parseErrors...)
}

func validateMonitorType(o *Options) []string {
	if o.Type.Valid() {
		return nil
	}

	types, _ := json.Marshal(models.MonitorTypes)

	return []string{
		fmt.Sprintf("key(%s) is not a valid monitor type.\n  Valid monitor types are: %s.", o.Type, types),
	}
}

func validateBackends(o *Options) []string {
	var violations []string

	if _, err := notify.New(o.NotifyURL); err != nil {
		violations = append(violations, fmt.Sprintf("key(%s) is not a supported notification URL: %v.", redact(o.NotifyURL), err))
	}

	if err := store.Supported(o.StoreURL); err != nil {
		violations = append(violations, fmt.Sprintf("key(%s) is not a supported store URL: %v.", redact(o.StoreURL), err))
	}

	return violations
}

// isValidURL returns true if value parses as an absolute URL.
func isValidURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}

	return u.Scheme != "" && (u.Host != "" || u.Path != "" || u.Opaque != "" || strings.HasSuffix(value, "://"))
}

func redact(value string) string {
	u, err := url.Parse(value)
	if err != nil {
		return value
	}

	return u.Redacted()
}

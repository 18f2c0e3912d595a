package models

import (
	"errors"
)

// ErrRecordNotFound must be returned by state stores if no record exists for
// a monitor name. It is the regular state of a monitor's first run.
var ErrRecordNotFound = errors.New("record not found")

// MonitorType selects the strategy used to extract a value from fetched
// content.
type MonitorType string

const (
	// MonitorTypeXPath evaluates an XPath expression against an HTML
	// document and yields the text content of the first matching node.
	MonitorTypeXPath MonitorType = "XPATH"

	// MonitorTypeCSS yields the text of the first element matching a CSS
	// selector.
	MonitorTypeCSS MonitorType = "CSS"

	// MonitorTypeJSONPath yields the value at a dot-notation path in a JSON
	// document.
	MonitorTypeJSONPath MonitorType = "JSONPATH"

	// MonitorTypeRegex yields the first match (or its first capture group)
	// of a regular expression.
	MonitorTypeRegex MonitorType = "REGEX"
)

// MonitorTypes lists all supported monitor types in display order.
var MonitorTypes = []MonitorType{
	MonitorTypeXPath,
	MonitorTypeCSS,
	MonitorTypeJSONPath,
	MonitorTypeRegex,
}

// Valid returns true if t is a member of MonitorTypes.
func (t MonitorType) Valid() bool {
	for _, known := range MonitorTypes {
		if t == known {
			return true
		}
	}

	return false
}

// Record is the persisted state of a monitor.
type Record struct {
	// Name is the monitor name and the key of the record.
	Name string `json:"name" dynamodbav:"name"`

	// Value is the latest normalized value that was extracted for the
	// monitor.
	Value string `json:"value" dynamodbav:"value"`
}

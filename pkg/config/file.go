package config

import (
	"os"

	"sigs.k8s.io/yaml"
)

// ReadFile reads options from a YAML or JSON file. Keys are the JSON names
// of the Options fields, e.g.:
//
//	name: site-a
//	url: https://example.org/page
//	type: XPATH
//	expression: //h1
//	notifyURL: https://hooks.slack.com/services/...
//	storeURL: sqlite:///var/lib/change-monitor/state.db
//	timeout: 30s
//	headers:
//	  Accept-Language: de
func ReadFile(filename string) (*Options, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var options Options

	err = yaml.Unmarshal(buf, &options)
	if err != nil {
		return nil, err
	}

	return &options, nil
}

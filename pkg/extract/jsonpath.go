package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"
)

type jsonPathExtractor struct {
	parts []string
}

// NewJSONPath creates an Extractor that walks a JSON document using a
// dot-notation path, e.g. "data.items.0.price". Numeric parts index into
// arrays. A leading "$." is ignored. Strings are returned as is, other
// scalars in their JSON representation and objects or arrays as compact
// JSON.
func NewJSONPath(expression string) (Extractor, error) {
	path := strings.TrimPrefix(strings.TrimPrefix(expression, "$"), ".")
	if path == "" {
		return &jsonPathExtractor{}, nil
	}

	parts := strings.Split(path, ".")
	for _, part := range parts {
		if part == "" {
			return nil, errors.Errorf("invalid JSON path %q: empty path segment", expression)
		}
	}

	return &jsonPathExtractor{parts: parts}, nil
}

// Extract implements Extractor.
func (e *jsonPathExtractor) Extract(content string) (string, error) {
	var data interface{}

	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.UseNumber()

	if err := decoder.Decode(&data); err != nil {
		return "", models.NewError(models.KindExtraction, errors.Wrap(err, "failed to parse JSON document"))
	}

	value, ok := walkJSONPath(data, e.parts)
	if !ok {
		return "", models.Errorf(models.KindExtraction, "JSON path result does not exist.")
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "null", nil
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			return "", models.NewError(models.KindExtraction, err)
		}

		return string(buf), nil
	}
}

func walkJSONPath(data interface{}, parts []string) (interface{}, bool) {
	current := data

	for _, part := range parts {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, false
			}

			current = next
		case []interface{}:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}

			current = node[index]
		default:
			return nil, false
		}
	}

	return current, true
}

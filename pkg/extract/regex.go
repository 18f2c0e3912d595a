package extract

import (
	"regexp"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"
)

type regexExtractor struct {
	re *regexp.Regexp
}

// NewRegex creates an Extractor that returns the first match of the regular
// expression in content. If the expression contains capture groups, the
// first group is returned instead of the whole match.
func NewRegex(expression string) (Extractor, error) {
	re, err := regexp.Compile(expression)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid regular expression %q", expression)
	}

	return &regexExtractor{re: re}, nil
}

// Extract implements Extractor.
func (e *regexExtractor) Extract(content string) (string, error) {
	match := e.re.FindStringSubmatchIndex(content)
	if match == nil {
		return "", models.Errorf(models.KindExtraction, "Regular expression result does not exist.")
	}

	if len(match) > 2 && match[2] >= 0 {
		return content[match[2]:match[3]], nil
	}

	return content[match[0]:match[1]], nil
}

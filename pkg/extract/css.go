package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"
)

type cssExtractor struct {
	selector cascadia.Selector
}

// NewCSS creates an Extractor that returns the text of the first element
// matching the CSS selector. Returns an error if the selector is invalid.
func NewCSS(expression string) (Extractor, error) {
	sel, err := cascadia.Compile(expression)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid CSS selector %q", expression)
	}

	return &cssExtractor{selector: sel}, nil
}

// Extract implements Extractor.
func (e *cssExtractor) Extract(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", models.NewError(models.KindExtraction, err)
	}

	selection := doc.FindMatcher(e.selector).First()
	if selection.Length() == 0 {
		return "", models.Errorf(models.KindExtraction, "CSS selector result does not exist.")
	}

	return selection.Text(), nil
}

package extract

import (
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/bonial-oss/change-monitor/pkg/models"
	"golang.org/x/net/html"
)

// positionLast selects the last node of a group.
const positionLast = -1

type xpathExtractor struct {
	expression string
	expr       *xpath.Expr

	// position is the 1-based index into the document ordered result of a
	// grouped expression such as "(//h2 | //p)[1]". Zero selects the first
	// node.
	position int
}

// NewXPath creates an Extractor that parses content as HTML document and
// returns the text content of the first node in document order matched by
// the XPath expression. The expression must select nodes; expressions
// yielding a string, number or boolean fail on extraction.
func NewXPath(expression string) (Extractor, error) {
	source, position := expression, 0
	if inner, pos, ok := splitGroupPosition(expression); ok {
		source, position = inner, pos
	}

	expr, err := xpath.Compile(source)
	if err != nil {
		return nil, models.Errorf(models.KindExtraction, "invalid XPath expression %q: %v", expression, err)
	}

	return &xpathExtractor{expression: expression, expr: expr, position: position}, nil
}

// match is a node selected by the expression. Attribute matches refer to
// their owning element.
type match struct {
	node  *html.Node
	attr  bool
	value string
}

// Extract implements Extractor.
func (e *xpathExtractor) Extract(content string) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(content))
	if err != nil {
		return "", models.NewError(models.KindExtraction, err)
	}

	iter, ok := e.expr.Evaluate(htmlquery.CreateXPathNavigator(doc)).(*xpath.NodeIterator)
	if !ok {
		return "", models.Errorf(models.KindExtraction, "XPath expression %q does not select nodes.", e.expression)
	}

	var matches []match
	for iter.MoveNext() {
		nav, ok := iter.Current().(*htmlquery.NodeNavigator)
		if !ok {
			continue
		}

		if nav.NodeType() == xpath.AttributeNode {
			matches = append(matches, match{node: nav.Current(), attr: true, value: nav.Value()})
		} else {
			matches = append(matches, match{node: nav.Current()})
		}
	}

	sortDocumentOrder(doc, matches)

	index := 0
	switch {
	case e.position == positionLast:
		index = len(matches) - 1
	case e.position > 0:
		index = e.position - 1
	}

	if index < 0 || index >= len(matches) {
		return "", models.Errorf(models.KindExtraction, "XPath evaluation result does not exist.")
	}

	if m := matches[index]; m.attr {
		return m.value, nil
	}

	return htmlquery.InnerText(matches[index].node), nil
}

// sortDocumentOrder sorts matches by their position in a pre-order walk of
// doc. An attribute sorts after its element and before the element's
// children. Equal positions keep evaluation order.
func sortDocumentOrder(doc *html.Node, matches []match) {
	if len(matches) < 2 {
		return
	}

	ranks := make(map[*html.Node]int)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		ranks[n] = 2 * len(ranks)

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	rank := func(m match) int {
		r, ok := ranks[m.node]
		if !ok {
			return 2 * len(ranks)
		}

		if m.attr {
			r++
		}

		return r
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return rank(matches[i]) < rank(matches[j])
	})
}

// splitGroupPosition splits expressions of the form "(expr)[n]" and
// "(expr)[last()]" into expr and the position. The position of a group is
// counted in document order, which the xpath package does not guarantee for
// unions, so it is applied after sorting.
func splitGroupPosition(expression string) (string, int, bool) {
	s := strings.TrimSpace(expression)
	if !strings.HasPrefix(s, "(") {
		return "", 0, false
	}

	end := closingParen(s)
	if end < 0 {
		return "", 0, false
	}

	rest := strings.TrimSpace(s[end+1:])
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return "", 0, false
	}

	predicate := strings.TrimSpace(rest[1 : len(rest)-1])
	if predicate == "last()" {
		return s[1:end], positionLast, true
	}

	n, err := strconv.Atoi(predicate)
	if err != nil || n < 1 {
		return "", 0, false
	}

	return s[1:end], n, true
}

// closingParen returns the index of the parenthesis closing s[0], skipping
// string literals. Returns -1 if it is unbalanced.
func closingParen(s string) int {
	var (
		depth int
		quote byte
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

package fetch

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

const defaultCharset = "utf-8"

// Charset returns the canonical name of the charset announced by the
// charset parameter of contentType. Returns "utf-8" if the parameter is
// absent, unparseable or names an unknown encoding.
func Charset(contentType string) string {
	if contentType == "" {
		return defaultCharset
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultCharset
	}

	label := strings.TrimSpace(params["charset"])
	if label == "" {
		return defaultCharset
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return defaultCharset
	}

	return name
}

// Decode decodes body using the charset announced by contentType. It returns
// the decoded text and the canonical name of the charset that was used.
func Decode(body []byte, contentType string) (string, string, error) {
	name := Charset(contentType)

	if name == defaultCharset {
		if !utf8.Valid(body) {
			return strings.ToValidUTF8(string(body), "�"), name, nil
		}

		return string(body), name, nil
	}

	enc, _ := charset.Lookup(name)

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", name, err
	}

	return string(decoded), name, nil
}

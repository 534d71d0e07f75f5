// Package sanitize strips unsafe constructs from HTML fragments before they
// are wrapped as raw-fragment blocks.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// policy is the fixed allowlist applied to every fragment. Input is always
// re-sanitized before display-bound use, even when the caller claims it is
// already safe; an inbound "sanitized" flag is advisory only.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br",
		"em", "strong", "u", "s", "del",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"hr", "blockquote",
		"code", "pre",
		"table", "thead", "tbody", "tr", "th", "td",
		"div", "span",
		"figure", "figcaption",
	)

	p.AllowAttrs("class", "id", "style", "title").Globally()
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("img")
	p.AllowStandardURLs()

	return p
}

// Sanitize applies the allowlist policy to fragment and rewrites any anchor
// that opens a new browsing context so it cannot reach back to the opener.
func Sanitize(fragment string) string {
	return rewriteBlankTargets(policy.Sanitize(fragment))
}

// rewriteBlankTargets adds rel="noopener noreferrer" to every
// <a target="_blank">, preserving any rel tokens already present. The input
// has already been sanitized, so tokens outside anchors pass through as-is.
func rewriteBlankTargets(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var sb strings.Builder

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			tok := z.Token()
			if tok.Data == "a" && attrEquals(tok.Attr, "target", "_blank") {
				setRel(&tok)
				sb.WriteString(tok.String())
				continue
			}
		}

		sb.Write(z.Raw())
	}
	return sb.String()
}

// setRel merges "noopener" and "noreferrer" into the anchor's rel attribute.
func setRel(tok *html.Token) {
	existing := ""
	idx := -1
	for i, a := range tok.Attr {
		if a.Key == "rel" {
			existing = a.Val
			idx = i
			break
		}
	}

	tokens := strings.Fields(existing)
	for _, want := range []string{"noopener", "noreferrer"} {
		found := false
		for _, t := range tokens {
			if t == want {
				found = true
				break
			}
		}
		if !found {
			tokens = append(tokens, want)
		}
	}
	rel := strings.Join(tokens, " ")

	if idx >= 0 {
		tok.Attr[idx].Val = rel
	} else {
		tok.Attr = append(tok.Attr, html.Attribute{Key: "rel", Val: rel})
	}
}

func attrEquals(attrs []html.Attribute, key, val string) bool {
	for _, a := range attrs {
		if a.Key == key && a.Val == val {
			return true
		}
	}
	return false
}

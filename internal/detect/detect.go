// Package detect classifies raw message content into one of the four
// supported input formats.
package detect

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

// FenceMarker is the reserved fence language tag that marks an embedded
// block fragment inside otherwise ordinary markdown.
const FenceMarker = "blocks"

var (
	// closingTagRe matches a closing HTML tag, e.g. </p> or </div>.
	closingTagRe = regexp.MustCompile(`</[a-zA-Z][a-zA-Z0-9-]*\s*>`)

	// embeddedFenceRe matches a fenced region tagged with the reserved
	// marker. Shared with the mixed-content splitter.
	embeddedFenceRe = regexp.MustCompile("(?s)```" + FenceMarker + "[ \t]*\n(.*?)\n```")

	// calloutRe matches the callout-quote pattern at a line start.
	calloutRe = regexp.MustCompile(`(?m)^>\s*\[!\w+\]`)
)

// EmbeddedFenceRegexp returns the pattern used to locate embedded block
// fragments. The mixed-content splitter reuses it so detection and
// splitting never disagree.
func EmbeddedFenceRegexp() *regexp.Regexp { return embeddedFenceRe }

// Detect classifies raw content. First match wins:
//
//  1. JSON whose shape is an array, or an object carrying a "type" or
//     "blocks" key → blocks
//  2. leading "<" with a matching closing tag → html
//  3. an embedded ```blocks fence or a callout quote → mixed
//  4. anything else → markdown
//
// Detection is pure and never fails; malformed JSON simply falls through.
func Detect(raw string) blocks.Format {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if gjson.Valid(trimmed) {
			parsed := gjson.Parse(trimmed)
			if parsed.IsArray() {
				return blocks.FormatBlocks
			}
			if parsed.Get("type").Exists() || parsed.Get("blocks").Exists() {
				return blocks.FormatBlocks
			}
			// An html-fragment wire object is sanitizable, not a block list.
			if parsed.Get("html").Exists() {
				return blocks.FormatHTML
			}
		}
	}

	if strings.HasPrefix(trimmed, "<") && closingTagRe.MatchString(trimmed) {
		return blocks.FormatHTML
	}

	if embeddedFenceRe.MatchString(raw) || calloutRe.MatchString(raw) {
		return blocks.FormatMixed
	}

	return blocks.FormatMarkdown
}

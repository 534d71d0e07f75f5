package detect

import (
	"testing"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want blocks.Format
	}{
		{"markdown heading", "# Hello", blocks.FormatMarkdown},
		{"single block object", `{"type":"text","value":"hi"}`, blocks.FormatBlocks},
		{"block array", `[{"type":"text"},{"type":"divider"}]`, blocks.FormatBlocks},
		{"blocks envelope", `{"blocks":[{"type":"text"}]}`, blocks.FormatBlocks},
		{"html fragment", "<p>hi</p>", blocks.FormatHTML},
		{"html wire object", `{"html":"<p>hi</p>","sanitized":true}`, blocks.FormatHTML},
		{"embedded fence", "before\n```blocks\n{\"type\":\"card\"}\n```\nafter", blocks.FormatMixed},
		{"callout quote", "> [!NOTE] remember\nplain", blocks.FormatMixed},
		{"empty string", "", blocks.FormatMarkdown},
		{"malformed json falls through", "{not json", blocks.FormatMarkdown},
		{"json without type or blocks", `{"value":"hi"}`, blocks.FormatMarkdown},
		{"leading angle without closing tag", "< 5 and > 3", blocks.FormatMarkdown},
		{"plain paragraph", "just words", blocks.FormatMarkdown},
	}

	for _, tc := range cases {
		if got := Detect(tc.raw); got != tc.want {
			t.Fatalf("%s: Detect(%q)=%q, want %q", tc.name, tc.raw, got, tc.want)
		}
	}
}

func TestEmbeddedFenceRegexpMatchesBody(t *testing.T) {
	raw := "x\n```blocks\n{\"type\":\"text\"}\n```\ny"
	m := EmbeddedFenceRegexp().FindStringSubmatch(raw)
	if m == nil {
		t.Fatal("fence not matched")
	}
	if m[1] != `{"type":"text"}` {
		t.Fatalf("body=%q, want %q", m[1], `{"type":"text"}`)
	}
}

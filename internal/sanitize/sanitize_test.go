package sanitize

import (
	"strings"
	"testing"
)

func TestScriptNeverSurvives(t *testing.T) {
	out := Sanitize(`<p>hi</p><script>alert("x")</script>`)
	if strings.Contains(out, "<script") || strings.Contains(out, "alert") {
		t.Fatalf("script survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<p>hi</p>") {
		t.Fatalf("allowed content was stripped: %q", out)
	}
}

func TestEventHandlersStripped(t *testing.T) {
	out := Sanitize(`<p onclick="steal()">hi</p>`)
	if strings.Contains(out, "onclick") {
		t.Fatalf("event handler survived: %q", out)
	}
}

func TestDataAttributesDisallowed(t *testing.T) {
	out := Sanitize(`<div data-secret="x">ok</div>`)
	if strings.Contains(out, "data-secret") {
		t.Fatalf("data attribute survived: %q", out)
	}
	if !strings.Contains(out, "ok") {
		t.Fatalf("content stripped: %q", out)
	}
}

func TestBlankTargetGainsRel(t *testing.T) {
	out := Sanitize(`<a href="https://example.com" target="_blank">x</a>`)
	if !strings.Contains(out, "noopener") || !strings.Contains(out, "noreferrer") {
		t.Fatalf("rel not rewritten: %q", out)
	}
}

func TestBlankTargetMergesExistingRel(t *testing.T) {
	out := Sanitize(`<a href="https://example.com" target="_blank" rel="nofollow">x</a>`)
	for _, want := range []string{"nofollow", "noopener", "noreferrer"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rel token %q missing: %q", want, out)
		}
	}
}

func TestPlainAnchorUntouched(t *testing.T) {
	out := Sanitize(`<a href="https://example.com">x</a>`)
	if strings.Contains(out, "noopener") {
		t.Fatalf("rel added to anchor without target=_blank: %q", out)
	}
}

func TestAllowedStructureSurvives(t *testing.T) {
	in := `<h2>Title</h2><ul><li>a</li></ul><table><tr><td>c</td></tr></table>` +
		`<figure><img src="https://example.com/i.png" alt="i"><figcaption>cap</figcaption></figure>`
	out := Sanitize(in)
	for _, want := range []string{"<h2>", "<ul>", "<li>", "<td>", "<img", "figcaption"} {
		if !strings.Contains(out, want) {
			t.Fatalf("%q missing from %q", want, out)
		}
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	in := `<p>hi <em>there</em></p><a href="https://example.com" target="_blank">x</a>`
	once := Sanitize(in)
	twice := Sanitize(once)
	if once != twice {
		t.Fatalf("not idempotent:\n once=%q\ntwice=%q", once, twice)
	}
}

package parser

import (
	"testing"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

const mixedSample = "intro paragraph\n\n```blocks\n{\"type\":\"callout\",\"variant\":\"warning\",\"text\":\"careful\"}\n```\n\nclosing words"

func TestSplitMixedStitchesInSourceOrder(t *testing.T) {
	res := New().Parse(mixedSample)

	if res.Content.Format != blocks.FormatMixed {
		t.Fatalf("format=%q, want mixed", res.Content.Format)
	}
	if !res.Success {
		t.Fatalf("parse failed: %+v", res.Errors)
	}
	bs := res.Content.Blocks
	if len(bs) != 3 {
		t.Fatalf("blocks=%d, want 3: %+v", len(bs), bs)
	}
	if bs[0].Type != blocks.TypeText || bs[0].Text != "intro paragraph" {
		t.Fatalf("first=%+v", bs[0])
	}
	if bs[1].Type != blocks.TypeCallout || bs[1].Variant != blocks.CalloutWarning {
		t.Fatalf("second=%+v", bs[1])
	}
	if bs[1].ID == "" {
		t.Fatal("embedded block must get an id")
	}
	if bs[2].Type != blocks.TypeText || bs[2].Text != "closing words" {
		t.Fatalf("third=%+v", bs[2])
	}
}

func TestSplitMixedFenceOnly(t *testing.T) {
	raw := "```blocks\n{\"type\":\"divider\"}\n```"
	res := New().Parse(raw)

	if len(res.Content.Blocks) != 1 || res.Content.Blocks[0].Type != blocks.TypeDivider {
		t.Fatalf("blocks=%+v", res.Content.Blocks)
	}
}

func TestSplitMixedMultipleFences(t *testing.T) {
	raw := "```blocks\n{\"type\":\"divider\"}\n```\n\nmiddle\n\n```blocks\n{\"type\":\"text\",\"text\":\"end\"}\n```"
	res := New().Parse(raw)

	bs := res.Content.Blocks
	if len(bs) != 3 {
		t.Fatalf("blocks=%d, want 3", len(bs))
	}
	want := []blocks.BlockType{blocks.TypeDivider, blocks.TypeText, blocks.TypeText}
	for i, b := range bs {
		if b.Type != want[i] {
			t.Fatalf("blocks[%d].Type=%q, want %q", i, b.Type, want[i])
		}
	}
}

func TestSplitMixedBadJSONBecomesCodeBlock(t *testing.T) {
	raw := "before\n\n```blocks\n{\"type\": broken\n```"
	res := New().Parse(raw)

	bs := res.Content.Blocks
	if len(bs) != 2 {
		t.Fatalf("blocks=%d, want 2: %+v", len(bs), bs)
	}
	b := bs[1]
	if b.Type != blocks.TypeCode || b.Language != "json" {
		t.Fatalf("fallback=%+v, want json code block", b)
	}
	if b.Code != `{"type": broken` {
		t.Fatalf("code=%q, body was altered", b.Code)
	}
}

func TestSplitMixedUnknownTypeBecomesCodeBlock(t *testing.T) {
	raw := "```blocks\n{\"type\":\"widget\"}\n```"
	res := New().Parse(raw)

	b := res.Content.Blocks[0]
	if b.Type != blocks.TypeCode || b.Language != "json" {
		t.Fatalf("fallback=%+v", b)
	}
}

package parser

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

// decodeBlockList decodes the block-list wire format: a top-level JSON
// array of block objects, an object carrying a "blocks" array, or a single
// block object. Blocks missing an id get one assigned. Decode failure never
// propagates: the raw string degrades to a single text block and a warning
// is surfaced instead.
func (p *Parser) decodeBlockList(raw string) ([]*blocks.Block, []blocks.ValidationError) {
	parsed := gjson.Parse(raw)

	payload := raw
	if parsed.IsObject() {
		if inner := parsed.Get("blocks"); inner.Exists() && inner.IsArray() {
			payload = inner.Raw
		} else {
			// A single block object: wrap it so one decode path handles all
			// three wire shapes.
			payload = "[" + raw + "]"
		}
	}

	var decoded []*blocks.Block
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		p.logger.Warn("block list decode failed, degrading to text",
			zap.Error(err))
		return []*blocks.Block{blocks.NewText(raw)}, []blocks.ValidationError{{
			Kind:     "decode-failure",
			Message:  fmt.Sprintf("block list decode failed: %v", err),
			Severity: blocks.SeverityWarning,
		}}
	}

	var errs []blocks.ValidationError
	out := make([]*blocks.Block, 0, len(decoded))
	for _, b := range decoded {
		if b == nil {
			continue
		}
		if !blocks.ValidType(b.Type) {
			p.logger.Warn("unknown block type in block list",
				zap.String("type", string(b.Type)))
			fallback := blocks.NewText(rawJSONOf(b))
			errs = append(errs, blocks.ValidationError{
				Kind:     "unknown-type",
				Message:  fmt.Sprintf("unknown block type %q degraded to text", b.Type),
				Severity: blocks.SeverityWarning,
				BlockID:  fallback.ID,
			})
			out = append(out, fallback)
			continue
		}
		b.EnsureID()
		out = append(out, b)
	}
	return out, errs
}

// rawJSONOf re-serializes a decoded block for the degraded-text fallback so
// content is never silently dropped.
func rawJSONOf(b *blocks.Block) string {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Sprintf("%+v", b)
	}
	return string(data)
}

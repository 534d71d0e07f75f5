package parser

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/samsaffron/chatblocks/internal/blocks"
	"github.com/samsaffron/chatblocks/internal/detect"
)

// splitResult carries the mixed-path outcome plus transformer tallies so the
// caller can fold them into the parse stats.
type splitResult struct {
	blocks    []*blocks.Block
	nodes     int
	truncated int
}

// splitMixed scans raw for embedded ```blocks fences. Markdown strictly
// before each fence goes through the transformer; each fence body decodes
// as one pre-built block (with an id assigned when absent). A body that is
// not valid JSON is wrapped as a json-tagged code block so content is never
// silently dropped. Output order follows source order.
func (p *Parser) splitMixed(raw string) splitResult {
	var res splitResult

	transform := func(segment string) {
		if strings.TrimSpace(segment) == "" {
			return
		}
		tr := p.transformer.Transform([]byte(segment))
		res.blocks = append(res.blocks, tr.Blocks...)
		res.nodes += tr.Nodes
		res.truncated += tr.Truncated
	}

	last := 0
	for _, m := range detect.EmbeddedFenceRegexp().FindAllStringSubmatchIndex(raw, -1) {
		transform(raw[last:m[0]])
		res.blocks = append(res.blocks, p.decodeFragment(raw[m[2]:m[3]]))
		last = m[1]
	}
	transform(raw[last:])

	return res
}

// decodeFragment decodes one embedded fence body into a block.
func (p *Parser) decodeFragment(body string) *blocks.Block {
	var b blocks.Block
	if err := json.Unmarshal([]byte(body), &b); err != nil || !blocks.ValidType(b.Type) {
		if err != nil {
			p.logger.Warn("embedded fragment decode failed, wrapping as code",
				zap.Error(err))
		} else {
			p.logger.Warn("embedded fragment has unknown type, wrapping as code",
				zap.String("type", string(b.Type)))
		}
		cb := blocks.New(blocks.TypeCode)
		cb.Code = body
		cb.Language = "json"
		return cb
	}
	b.EnsureID()
	return &b
}

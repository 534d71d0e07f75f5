package parser

import (
	"io"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

// StreamCallbacks receive incremental output from a StreamParser. OnBlock
// fires synchronously for every block as it becomes available; OnComplete
// fires once at finalization with the full accumulated list and elapsed
// time. OnError is optional and only fires for source read failures — line
// parse problems degrade to text blocks instead.
type StreamCallbacks struct {
	OnBlock    func(*blocks.Block)
	OnComplete func([]*blocks.Block, time.Duration)
	OnError    func(error)
}

// StreamParser consumes an incremental text stream, buffering until line
// boundaries and parsing completed lines eagerly. It owns its buffer for
// the lifetime of one stream and must not be shared across concurrent
// streams.
type StreamParser struct {
	p  *Parser
	cb StreamCallbacks

	buf       strings.Builder
	all       []*blocks.Block
	started   time.Time
	finalized bool
	cancelled atomic.Bool
}

// NewStream creates a streaming parser bound to p's configuration. The
// stream path reuses the transformer per completed line and never consults
// the parse cache.
func (p *Parser) NewStream(cb StreamCallbacks) *StreamParser {
	return &StreamParser{p: p, cb: cb}
}

// Feed appends a chunk and drains any completed lines, invoking OnBlock for
// each resulting block. Feeding after Close or Cancel is a no-op.
func (s *StreamParser) Feed(chunk string) {
	if s.finalized || s.cancelled.Load() {
		return
	}
	if s.started.IsZero() {
		s.started = time.Now()
	}

	s.buf.WriteString(chunk)
	s.drain()
}

// drain extracts and parses completed lines one at a time.
func (s *StreamParser) drain() {
	pending := s.buf.String()
	for {
		if s.cancelled.Load() {
			return
		}
		idx := strings.IndexByte(pending, '\n')
		if idx < 0 {
			break
		}
		line := pending[:idx]
		pending = pending[idx+1:]
		s.parseChunk(line)
	}
	s.buf.Reset()
	s.buf.WriteString(pending)
}

// parseChunk lowers one completed line (or the final partial buffer) into
// blocks and emits them.
func (s *StreamParser) parseChunk(chunk string) {
	if strings.TrimSpace(chunk) == "" {
		return
	}

	tr := s.p.transformer.Transform([]byte(chunk))
	bs := tr.Blocks
	if len(bs) == 0 && strings.TrimSpace(chunk) != "" {
		// Nothing lowered; keep the content as plain text rather than
		// dropping it.
		s.p.logger.Debug("stream line produced no blocks, keeping as text",
			zap.Int("len", len(chunk)))
		bs = []*blocks.Block{blocks.NewText(chunk)}
	}

	for _, b := range bs {
		if s.cancelled.Load() {
			return
		}
		s.all = append(s.all, b)
		if s.cb.OnBlock != nil {
			s.cb.OnBlock(b)
		}
	}
}

// Close finalizes the stream: the remaining partial buffer is parsed as a
// final chunk, then OnComplete fires with the accumulated blocks and
// elapsed time. Close after Cancel does nothing.
func (s *StreamParser) Close() {
	if s.finalized || s.cancelled.Load() {
		return
	}
	s.finalized = true

	if rest := s.buf.String(); strings.TrimSpace(rest) != "" {
		s.parseChunk(rest)
	}
	s.buf.Reset()

	if s.cancelled.Load() {
		return
	}
	elapsed := time.Duration(0)
	if !s.started.IsZero() {
		elapsed = time.Since(s.started)
	}
	if s.cb.OnComplete != nil {
		s.cb.OnComplete(s.all, elapsed)
	}
}

// Cancel stops the stream cooperatively: the flag is checked before each
// drain step, no further callbacks fire, and the stream never finalizes.
func (s *StreamParser) Cancel() {
	s.cancelled.Store(true)
}

// ParseStreaming pumps src through a new stream on a goroutine, invoking
// the callbacks as blocks become available. The returned function cancels
// the stream; cancellation is checked before every read.
func (p *Parser) ParseStreaming(src io.Reader, cb StreamCallbacks) (cancel func()) {
	s := p.NewStream(cb)

	go func() {
		buf := make([]byte, 4096)
		for {
			if s.cancelled.Load() {
				return
			}
			n, err := src.Read(buf)
			if n > 0 {
				s.Feed(string(buf[:n]))
			}
			if err != nil {
				if err != io.EOF && cb.OnError != nil && !s.cancelled.Load() {
					cb.OnError(err)
				}
				s.Close()
				return
			}
		}
	}()

	return s.Cancel
}

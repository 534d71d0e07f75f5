// Package parser orchestrates format detection, transformation, validation,
// caching and metrics for chat message content.
package parser

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/samsaffron/chatblocks/internal/blocks"
	"github.com/samsaffron/chatblocks/internal/detect"
	"github.com/samsaffron/chatblocks/internal/sanitize"
	"github.com/samsaffron/chatblocks/internal/transform"
)

// Options configure a Parser.
type Options struct {
	EnableCache    bool
	EnableMetrics  bool
	EnableCallouts bool
	SanitizeHTML   bool
	MaxDepth       int
	CacheCapacity  int
	MetricsWindow  int
	Logger         *zap.Logger
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		EnableCache:    true,
		EnableMetrics:  true,
		EnableCallouts: true,
		SanitizeHTML:   true,
		MaxDepth:       transform.DefaultMaxDepth,
		CacheCapacity:  DefaultCacheCapacity,
		MetricsWindow:  DefaultMetricsWindow,
		Logger:         zap.NewNop(),
	}
}

// Option mutates Options.
type Option func(*Options)

// WithCache toggles the parse cache.
func WithCache(enabled bool) Option {
	return func(o *Options) { o.EnableCache = enabled }
}

// WithCacheCapacity bounds the parse cache.
func WithCacheCapacity(n int) Option {
	return func(o *Options) { o.CacheCapacity = n }
}

// WithMetrics toggles the metrics recorder.
func WithMetrics(enabled bool) Option {
	return func(o *Options) { o.EnableMetrics = enabled }
}

// WithCallouts toggles [!KEYWORD] blockquote translation.
func WithCallouts(enabled bool) Option {
	return func(o *Options) { o.EnableCallouts = enabled }
}

// WithSanitize toggles HTML fragment sanitization. Disabling it is a
// security-relevant decision and is only appropriate in headless contexts
// where the output never reaches a browsing context.
func WithSanitize(enabled bool) Option {
	return func(o *Options) { o.SanitizeHTML = enabled }
}

// WithMaxDepth bounds recursive lowering of nested containers.
func WithMaxDepth(d int) Option {
	return func(o *Options) { o.MaxDepth = d }
}

// WithMetricsWindow sets the rolling metrics window size.
func WithMetricsWindow(n int) Option {
	return func(o *Options) { o.MetricsWindow = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Parser is the explicit context value owning all otherwise-global state:
// the parse cache, the metrics recorder, the configured transformer and the
// logger. Construct one with New and share it; Parse is safe for concurrent
// callers.
type Parser struct {
	opts        Options
	logger      *zap.Logger
	transformer *transform.Transformer
	cache       *resultCache
	recorder    *Recorder
}

// New creates a Parser with the given options applied over the defaults.
func New(opts ...Option) *Parser {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Parser{
		opts:   o,
		logger: o.Logger,
		transformer: transform.New(
			transform.WithLogger(o.Logger),
			transform.WithMaxDepth(o.MaxDepth),
			transform.WithCallouts(o.EnableCallouts),
		),
	}
	if o.EnableCache {
		p.cache = newResultCache(o.CacheCapacity)
	}
	if o.EnableMetrics {
		p.recorder = NewRecorder(o.MetricsWindow)
	}
	return p
}

// Metrics exposes the recorder, or nil when metrics are disabled.
func (p *Parser) Metrics() *Recorder { return p.recorder }

// CacheLen reports the number of cached results.
func (p *Parser) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.len()
}

// ClearCache drops all cached results.
func (p *Parser) ClearCache() {
	if p.cache != nil {
		p.cache.clear()
	}
}

// Parse normalizes raw content, detecting its format first. Malformed input
// never produces a Go error; worst case is a degraded tree plus entries in
// ParseResult.Errors.
func (p *Parser) Parse(raw string) *blocks.ParseResult {
	return p.ParseAs(raw, "")
}

// ParseAs normalizes raw content as the given format, or detects the format
// when it is empty.
func (p *Parser) ParseAs(raw string, format blocks.Format) *blocks.ParseResult {
	start := time.Now()

	if format == "" {
		format = detect.Detect(raw)
	}

	var key string
	if p.cache != nil {
		key = cacheKey(raw, format)
		if hit := p.cache.get(key); hit != nil {
			// Returned as-is apart from the hit flag; no re-validation, no
			// re-derived stats.
			res := *hit
			res.Stats.CacheHit = true
			p.record(Sample{
				At:         time.Now(),
				Duration:   time.Since(start),
				Format:     format,
				CacheHit:   true,
				BlockCount: res.Stats.BlockCount,
			})
			return &res
		}
	}

	var (
		bs        []*blocks.Block
		errs      []blocks.ValidationError
		nodes     int
		truncated int
		sanitized bool
	)

	switch format {
	case blocks.FormatMarkdown:
		tr := p.transformer.Transform([]byte(raw))
		bs, nodes, truncated = tr.Blocks, tr.Nodes, tr.Truncated

	case blocks.FormatHTML:
		bs, sanitized = p.sanitizeFragment(raw)

	case blocks.FormatBlocks:
		bs, errs = p.decodeBlockList(raw)

	case blocks.FormatMixed:
		sp := p.splitMixed(raw)
		bs, nodes, truncated = sp.blocks, sp.nodes, sp.truncated

	default:
		tr := p.transformer.Transform([]byte(raw))
		bs, nodes, truncated = tr.Blocks, tr.Nodes, tr.Truncated
		format = blocks.FormatMarkdown
	}

	if truncated > 0 {
		errs = append(errs, blocks.ValidationError{
			Kind:     "depth-exceeded",
			Message:  "content deeper than the recursion bound was dropped",
			Severity: blocks.SeverityWarning,
		})
	}

	errs = append(errs, blocks.Validate(bs)...)

	success := true
	for _, e := range errs {
		if e.Severity == blocks.SeverityError {
			success = false
			break
		}
	}

	result := &blocks.ParseResult{
		Success: success,
		Content: blocks.NewMessageContent(format, raw, bs),
		Errors:  errs,
		Stats: blocks.ParseStats{
			ParseTime:  time.Since(start),
			BlockCount: blocks.Count(bs),
			NodeCount:  nodes,
			Sanitized:  sanitized,
		},
	}

	if p.cache != nil {
		p.cache.put(key, result)
	}
	p.record(Sample{
		At:         time.Now(),
		Duration:   result.Stats.ParseTime,
		Format:     format,
		BlockCount: result.Stats.BlockCount,
	})
	return result
}

// sanitizeFragment wraps fragment-format input as a single raw-fragment
// block. Both the bare markup form and the {"html": …} wire object are
// accepted; any inbound sanitized claim is ignored and the fragment is
// re-sanitized whenever sanitization is enabled.
func (p *Parser) sanitizeFragment(raw string) ([]*blocks.Block, bool) {
	fragment := raw
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) {
		if inner := gjson.Get(trimmed, "html"); inner.Exists() {
			fragment = inner.String()
		}
	}

	b := blocks.New(blocks.TypeRawFragment)
	if p.opts.SanitizeHTML {
		b.HTML = sanitize.Sanitize(fragment)
		b.Sanitized = true
		return []*blocks.Block{b}, true
	}

	p.logger.Warn("sanitization disabled, passing fragment through")
	b.HTML = fragment
	b.Sanitized = false
	return []*blocks.Block{b}, false
}

// record stores a metrics sample when the recorder is enabled.
func (p *Parser) record(s Sample) {
	if p.recorder != nil {
		p.recorder.Record(s)
	}
}

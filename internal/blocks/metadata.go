package blocks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Format is the detected shape of raw message content.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatBlocks   Format = "blocks"
	FormatMixed    Format = "mixed"
)

// Metadata summarizes parsed content. It is always derived from the raw
// input and block tree, never hand-authored, and is recomputed on every
// fresh parse.
type Metadata struct {
	WordCount     int      `json:"wordCount"`
	CharCount     int      `json:"charCount"`
	BlockCount    int      `json:"blockCount"`
	HasCode       bool     `json:"hasCode,omitempty"`
	HasImages     bool     `json:"hasImages,omitempty"`
	HasMath       bool     `json:"hasMath,omitempty"`
	HasTables     bool     `json:"hasTables,omitempty"`
	CodeLanguages []string `json:"codeLanguages,omitempty"`
	ReadingTime   int      `json:"readingTime"` // minutes, minimum 1
	ContentHash   string   `json:"contentHash"`
}

// MessageContent is the envelope returned to callers: the raw input as
// received, its detected format, the normalized block tree, and derived
// metadata.
type MessageContent struct {
	ID       string   `json:"id"`
	Format   Format   `json:"format"`
	Raw      string   `json:"raw"`
	Blocks   []*Block `json:"blocks,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// NewMessageContent builds an envelope with a fresh id and derived metadata.
func NewMessageContent(format Format, raw string, bs []*Block) *MessageContent {
	return &MessageContent{
		ID:       uuid.NewString(),
		Format:   format,
		Raw:      raw,
		Blocks:   bs,
		Metadata: DeriveMetadata(raw, bs),
	}
}

// readingWPM is the assumed reading speed for the reading-time estimate.
const readingWPM = 200

// DeriveMetadata computes content metadata from the raw string and the
// parsed block tree. The content hash is a fast non-cryptographic digest of
// the raw input, intended for change detection rather than integrity.
func DeriveMetadata(raw string, bs []*Block) Metadata {
	md := Metadata{
		WordCount:   len(strings.Fields(raw)),
		CharCount:   len([]rune(raw)),
		BlockCount:  Count(bs),
		ContentHash: fmt.Sprintf("%016x", xxhash.Sum64String(raw)),
	}

	langs := map[string]struct{}{}
	var scan func([]*Block)
	scan = func(list []*Block) {
		for _, b := range list {
			switch b.Type {
			case TypeCode:
				md.HasCode = true
				if b.Language != "" {
					langs[b.Language] = struct{}{}
				}
			case TypeImage:
				md.HasImages = true
			case TypeMath:
				md.HasMath = true
			case TypeTable:
				md.HasTables = true
			}
			scan(b.Children)
		}
	}
	scan(bs)

	for l := range langs {
		md.CodeLanguages = append(md.CodeLanguages, l)
	}
	sort.Strings(md.CodeLanguages)

	md.ReadingTime = md.WordCount / readingWPM
	if md.ReadingTime < 1 {
		md.ReadingTime = 1
	}
	return md
}

// Severity grades a validation finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ValidationError is one non-fatal finding surfaced on a ParseResult.
type ValidationError struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	BlockID  string   `json:"blockId,omitempty"`
}

// ParseStats captures per-invocation timing and size figures.
type ParseStats struct {
	ParseTime  time.Duration `json:"parseTimeNs"`
	BlockCount int           `json:"blockCount"`
	NodeCount  int           `json:"nodeCount"`
	Sanitized  bool          `json:"sanitized"`
	CacheHit   bool          `json:"cacheHit"`
}

// ParseResult is the outcome of one parse invocation. It is constructed
// once and not mutated afterwards; cached results are returned without
// re-deriving stats.
type ParseResult struct {
	Success bool              `json:"success"`
	Content *MessageContent   `json:"content"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Stats   ParseStats        `json:"stats"`
}

// Package transform lowers a markdown AST into normalized content blocks.
package transform

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

// DefaultMaxDepth bounds recursive lowering of nested containers.
const DefaultMaxDepth = 10

var (
	inlineMathRe = regexp.MustCompile(`^\$([^$\n]+)\$$`)
	calloutRe    = regexp.MustCompile(`(?is)^\[!(\w+)\]\s*(.*)$`)
	slugCleanRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// calloutVariants maps the blockquote callout keyword to a block variant.
var calloutVariants = map[string]blocks.CalloutVariant{
	"note":      blocks.CalloutNote,
	"tip":       blocks.CalloutTip,
	"important": blocks.CalloutInfo,
	"warning":   blocks.CalloutWarning,
	"caution":   blocks.CalloutError,
}

// Transformer parses markdown and lowers the AST into content blocks.
// A Transformer is safe for concurrent use; per-call state lives on the
// stack of Transform.
type Transformer struct {
	md       goldmark.Markdown
	logger   *zap.Logger
	maxDepth int
	callouts bool
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger used for depth-guard diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMaxDepth overrides the recursion depth bound.
func WithMaxDepth(d int) Option {
	return func(t *Transformer) {
		if d > 0 {
			t.maxDepth = d
		}
	}
}

// WithCallouts toggles translation of [!KEYWORD] blockquotes into callout
// blocks. Enabled by default.
func WithCallouts(enabled bool) Option {
	return func(t *Transformer) { t.callouts = enabled }
}

// New creates a Transformer with GFM extensions (tables, task lists,
// strikethrough, autolinks) enabled.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
		callouts: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Result is the outcome of one Transform call.
type Result struct {
	Blocks    []*blocks.Block
	Nodes     int // AST nodes visited
	Truncated int // subtrees dropped by the depth guard
}

// Transform parses source as markdown and lowers it into blocks. It never
// returns an error: malformed constructs degrade to plain text and subtrees
// past the depth bound are dropped (reported via Result.Truncated).
func (t *Transformer) Transform(source []byte) Result {
	doc := t.md.Parser().Parse(text.NewReader(source))

	st := &walker{t: t, src: source}
	bs := st.convertChildren(doc, 0)

	nodes := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			nodes++
		}
		return ast.WalkContinue, nil
	})

	return Result{Blocks: bs, Nodes: nodes, Truncated: st.truncated}
}

// walker carries per-call lowering state.
type walker struct {
	t         *Transformer
	src       []byte
	truncated int
}

// convertChildren lowers the direct children of n. Nil results are dropped.
func (w *walker) convertChildren(n ast.Node, depth int) []*blocks.Block {
	var out []*blocks.Block
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if b := w.convertNode(child, depth); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// convertNode lowers one block-level AST node into a content block, or nil
// when the node produces nothing. depth is threaded explicitly so the guard
// does not depend on call-stack behavior.
func (w *walker) convertNode(n ast.Node, depth int) *blocks.Block {
	if depth >= w.t.maxDepth {
		w.truncated++
		w.t.logger.Warn("max depth exceeded, dropping subtree",
			zap.Int("depth", depth),
			zap.String("node", n.Kind().String()))
		return nil
	}

	switch node := n.(type) {
	case *ast.Heading:
		b := blocks.New(blocks.TypeHeading)
		b.Level = node.Level
		b.Text = w.flatten(node, nil)
		b.Anchor = Slugify(b.Text)
		return b

	case *ast.Paragraph, *ast.TextBlock:
		return w.convertParagraph(n)

	case *ast.Blockquote:
		return w.convertBlockquote(node, depth)

	case *ast.List:
		return w.convertList(node, depth)

	case *ast.FencedCodeBlock:
		info := ""
		if node.Info != nil {
			info = string(node.Info.Segment.Value(w.src))
		}
		meta := parseFenceInfo(info)
		b := blocks.New(blocks.TypeCode)
		b.Code = w.lines(node)
		b.Language = meta.language
		b.Filename = meta.filename
		b.HighlightLines = meta.highlight
		return b

	case *ast.CodeBlock:
		b := blocks.New(blocks.TypeCode)
		b.Code = w.lines(node)
		return b

	case *ast.ThematicBreak:
		b := blocks.New(blocks.TypeDivider)
		b.DividerStyle = "thin"
		return b

	case *extast.Table:
		return w.convertTable(node)

	default:
		// Unhandled node types produce no block. This is deliberate, not an
		// error: raw HTML blocks, link reference definitions and the like
		// have no counterpart in the block model.
		return nil
	}
}

// convertParagraph lowers a paragraph, special-casing image-only paragraphs
// and single-pair $…$ inline math.
func (w *walker) convertParagraph(n ast.Node) *blocks.Block {
	if img := soleImageChild(n); img != nil {
		b := blocks.New(blocks.TypeImage)
		b.Src = string(img.Destination)
		b.Alt = w.flatten(img, nil)
		b.Caption = string(img.Title)
		return b
	}

	var format blocks.TextFormat
	flat := w.flatten(n, &format)

	if m := inlineMathRe.FindStringSubmatch(strings.TrimSpace(flat)); m != nil {
		b := blocks.New(blocks.TypeMath)
		b.Expression = m[1]
		return b
	}

	if flat == "" {
		return nil
	}
	b := blocks.NewText(flat)
	if format != (blocks.TextFormat{}) {
		f := format
		b.Format = &f
	}
	return b
}

// convertBlockquote translates callout-style quotes into callout blocks and
// lowers everything else into a quote wrapping its transformed children.
func (w *walker) convertBlockquote(node *ast.Blockquote, depth int) *blocks.Block {
	if w.t.callouts {
		flat := strings.TrimSpace(w.flatten(node, nil))
		if m := calloutRe.FindStringSubmatch(flat); m != nil {
			if variant, ok := calloutVariants[strings.ToLower(m[1])]; ok {
				b := blocks.New(blocks.TypeCallout)
				b.Variant = variant
				if rest := strings.TrimSpace(m[2]); rest != "" {
					b.Children = append(b.Children, blocks.NewText(rest))
				}
				return b
			}
		}
	}

	b := blocks.New(blocks.TypeQuote)
	b.Children = w.convertChildren(node, depth+1)
	return b
}

// convertList lowers a list and its items, carrying the ordered flag, start
// offset, and task-list checked state.
func (w *walker) convertList(node *ast.List, depth int) *blocks.Block {
	b := blocks.New(blocks.TypeList)
	b.Ordered = node.IsOrdered()
	if b.Ordered {
		b.Start = node.Start
	}

	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		li, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		item := blocks.New(blocks.TypeListItem)
		if checked, isTask := taskState(li); isTask {
			c := checked
			item.Checked = &c
		}
		item.Children = w.convertChildren(li, depth+1)
		b.Children = append(b.Children, item)
	}
	return b
}

// convertTable lowers a GFM table. The first row is the header; each cell's
// alignment comes positionally from the table's alignment vector. Cell
// content is flattened to plain text.
func (w *walker) convertTable(node *extast.Table) *blocks.Block {
	b := blocks.New(blocks.TypeTable)

	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		_, isHeader := row.(*extast.TableHeader)
		if _, isRow := row.(*extast.TableRow); !isRow && !isHeader {
			continue
		}

		rb := blocks.New(blocks.TypeTableRow)
		rb.Header = isHeader

		col := 0
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if _, ok := cell.(*extast.TableCell); !ok {
				continue
			}
			cb := blocks.New(blocks.TypeTableCell)
			cb.Header = isHeader
			cb.Text = w.flatten(cell, nil)
			if col < len(node.Alignments) {
				cb.Align = tableAlignment(node.Alignments[col])
			}
			rb.Children = append(rb.Children, cb)
			col++
		}
		b.Children = append(b.Children, rb)
	}
	return b
}

// lines concatenates the source lines of a code block, trimming the final
// newline the way the fence syntax implies.
func (w *walker) lines(n ast.Node) string {
	var buf bytes.Buffer
	segments := n.Lines()
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		buf.Write(seg.Value(w.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// flatten extracts the plain text of a node's inline subtree. Soft and hard
// line breaks become newlines. When format is non-nil, inline construct
// flags are recorded on it.
func (w *walker) flatten(n ast.Node, format *blocks.TextFormat) string {
	var sb strings.Builder
	w.flattenInto(&sb, n, format)
	return sb.String()
}

func (w *walker) flattenInto(sb *strings.Builder, n ast.Node, format *blocks.TextFormat) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(w.src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.CodeSpan:
			if format != nil {
				format.Code = true
			}
			w.flattenInto(sb, node, format)
		case *ast.Emphasis:
			if format != nil {
				if node.Level == 2 {
					format.Bold = true
				} else {
					format.Italic = true
				}
			}
			w.flattenInto(sb, node, format)
		case *extast.Strikethrough:
			if format != nil {
				format.Strikethrough = true
			}
			w.flattenInto(sb, node, format)
		case *ast.Link:
			if format != nil {
				format.Link = true
			}
			w.flattenInto(sb, node, format)
		case *ast.AutoLink:
			if format != nil {
				format.Link = true
			}
			sb.Write(node.URL(w.src))
		case *ast.Image:
			w.flattenInto(sb, node, format)
		case *extast.TaskCheckBox:
			// Rendered via the list item's checked flag, not as text.
		default:
			if child.HasChildren() {
				w.flattenInto(sb, child, format)
			}
		}
	}
}

// soleImageChild returns the image node when a paragraph's only child is an
// image, otherwise nil.
func soleImageChild(n ast.Node) *ast.Image {
	if n.ChildCount() != 1 {
		return nil
	}
	img, ok := n.FirstChild().(*ast.Image)
	if !ok {
		return nil
	}
	return img
}

// taskState reports whether a list item is a task-list entry and, if so,
// whether it is checked. The checkbox is the first inline child of the
// item's first paragraph.
func taskState(li *ast.ListItem) (checked, isTask bool) {
	first := li.FirstChild()
	if first == nil {
		return false, false
	}
	box, ok := first.FirstChild().(*extast.TaskCheckBox)
	if !ok {
		return false, false
	}
	return box.IsChecked, true
}

// tableAlignment maps a goldmark table alignment onto the block model's.
func tableAlignment(a extast.Alignment) blocks.Alignment {
	switch a {
	case extast.AlignLeft:
		return blocks.AlignLeft
	case extast.AlignCenter:
		return blocks.AlignCenter
	case extast.AlignRight:
		return blocks.AlignRight
	default:
		return ""
	}
}

// Slugify derives a heading anchor: lowercase, runs of non-alphanumerics
// collapsed to single hyphens, leading and trailing hyphens trimmed.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugCleanRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Package blocks defines the normalized content-block tree that every parse
// path produces, plus metadata derivation and structural validation.
package blocks

import (
	"time"

	"github.com/google/uuid"
)

// BlockType discriminates the closed set of block variants.
type BlockType string

const (
	TypeText        BlockType = "text"
	TypeHeading     BlockType = "heading"
	TypeDivider     BlockType = "divider"
	TypeCode        BlockType = "code"
	TypeList        BlockType = "list"
	TypeListItem    BlockType = "list-item"
	TypeQuote       BlockType = "quote"
	TypeImage       BlockType = "image"
	TypeTable       BlockType = "table"
	TypeTableRow    BlockType = "table-row"
	TypeTableCell   BlockType = "table-cell"
	TypeCallout     BlockType = "callout"
	TypeMath        BlockType = "math"
	TypeRawFragment BlockType = "raw-fragment"
	TypeCard        BlockType = "card"
)

// Types lists every valid block type. Used by validation and by the
// block-list decoder to reject unknown variants.
var Types = []BlockType{
	TypeText, TypeHeading, TypeDivider, TypeCode, TypeList, TypeListItem,
	TypeQuote, TypeImage, TypeTable, TypeTableRow, TypeTableCell,
	TypeCallout, TypeMath, TypeRawFragment, TypeCard,
}

// ValidType reports whether t is a member of the closed variant set.
func ValidType(t BlockType) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Source identifies the provenance of a block.
type Source string

const (
	SourceUser      Source = "user"
	SourceAssistant Source = "assistant"
	SourceSystem    Source = "system"
	SourceTool      Source = "tool"
)

// CalloutVariant is the rendering intent of a callout block.
type CalloutVariant string

const (
	CalloutInfo    CalloutVariant = "info"
	CalloutWarning CalloutVariant = "warning"
	CalloutError   CalloutVariant = "error"
	CalloutSuccess CalloutVariant = "success"
	CalloutTip     CalloutVariant = "tip"
	CalloutNote    CalloutVariant = "note"
)

// Alignment is a table-cell text alignment.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// TextFormat carries inline formatting flags for a text block. It records
// which inline constructs appeared in the flattened text so renderers keep
// inline fidelity without re-parsing.
type TextFormat struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Code          bool `json:"code,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Link          bool `json:"link,omitempty"`
}

// Block is one node of the normalized content tree, discriminated by Type.
// Variant-specific fields are omitted from JSON when unset, so the same
// struct round-trips all variants over the block-list wire format.
//
// Children are owned by value: a block appears in exactly one place in a
// tree, which keeps Clone and Equal straightforward.
type Block struct {
	ID          string     `json:"id"`
	Type        BlockType  `json:"type"`
	Source      Source     `json:"source,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	Version     int        `json:"version,omitempty"`
	Interactive bool       `json:"interactive,omitempty"`

	// text
	Text   string      `json:"text,omitempty"`
	Format *TextFormat `json:"format,omitempty"`

	// heading
	Level  int    `json:"level,omitempty"`
	Anchor string `json:"anchor,omitempty"`

	// divider
	DividerStyle string `json:"dividerStyle,omitempty"`

	// code
	Code           string `json:"code,omitempty"`
	Language       string `json:"language,omitempty"`
	Filename       string `json:"filename,omitempty"`
	HighlightLines []int  `json:"highlightLines,omitempty"`

	// list / list-item
	Ordered bool  `json:"ordered,omitempty"`
	Start   int   `json:"start,omitempty"`
	Checked *bool `json:"checked,omitempty"`

	// quote
	Author string `json:"author,omitempty"`
	Cite   string `json:"cite,omitempty"`

	// image
	Src     string `json:"src,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`

	// table / table-row / table-cell
	Header  bool      `json:"header,omitempty"`
	ColSpan int       `json:"colSpan,omitempty"`
	RowSpan int       `json:"rowSpan,omitempty"`
	Align   Alignment `json:"align,omitempty"`

	// callout
	Variant CalloutVariant `json:"variant,omitempty"`

	// math
	Expression  string `json:"expression,omitempty"`
	DisplayMode bool   `json:"displayMode,omitempty"`

	// raw-fragment
	HTML      string `json:"html,omitempty"`
	Sanitized bool   `json:"sanitized,omitempty"`

	// card
	Title string `json:"title,omitempty"`

	// container children (list-item, quote, callout, table structure)
	Children []*Block `json:"children,omitempty"`
}

// New creates a block of the given type with a fresh unique id and creation
// timestamp. IDs are never reused or mutated after creation.
func New(t BlockType) *Block {
	return &Block{
		ID:        uuid.NewString(),
		Type:      t,
		CreatedAt: time.Now().UTC(),
	}
}

// NewText creates a text block holding s.
func NewText(s string) *Block {
	b := New(TypeText)
	b.Text = s
	return b
}

// EnsureID assigns a fresh id when none is present, recursively. Used when
// adopting externally supplied block objects.
func (b *Block) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	for _, c := range b.Children {
		c.EnsureID()
	}
}

// Clone returns a deep copy of the block and its subtree. IDs are preserved;
// the copy shares no memory with the original.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	cp := *b
	if b.Format != nil {
		f := *b.Format
		cp.Format = &f
	}
	if b.Checked != nil {
		c := *b.Checked
		cp.Checked = &c
	}
	if b.HighlightLines != nil {
		cp.HighlightLines = append([]int(nil), b.HighlightLines...)
	}
	if b.Children != nil {
		cp.Children = make([]*Block, len(b.Children))
		for i, c := range b.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// CloneAll deep-copies a block slice.
func CloneAll(bs []*Block) []*Block {
	if bs == nil {
		return nil
	}
	out := make([]*Block, len(bs))
	for i, b := range bs {
		out[i] = b.Clone()
	}
	return out
}

// Equal reports structural equality between two blocks, ignoring IDs and
// creation timestamps. Two trees are equal when every variant tag and field
// value matches pairwise.
func (b *Block) Equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Type != o.Type || b.Source != o.Source || b.Version != o.Version ||
		b.Interactive != o.Interactive {
		return false
	}
	if b.Text != o.Text || b.Level != o.Level || b.Anchor != o.Anchor ||
		b.DividerStyle != o.DividerStyle {
		return false
	}
	if b.Code != o.Code || b.Language != o.Language || b.Filename != o.Filename {
		return false
	}
	if len(b.HighlightLines) != len(o.HighlightLines) {
		return false
	}
	for i := range b.HighlightLines {
		if b.HighlightLines[i] != o.HighlightLines[i] {
			return false
		}
	}
	if b.Ordered != o.Ordered || b.Start != o.Start {
		return false
	}
	if (b.Checked == nil) != (o.Checked == nil) {
		return false
	}
	if b.Checked != nil && *b.Checked != *o.Checked {
		return false
	}
	if (b.Format == nil) != (o.Format == nil) {
		return false
	}
	if b.Format != nil && *b.Format != *o.Format {
		return false
	}
	if b.Author != o.Author || b.Cite != o.Cite {
		return false
	}
	if b.Src != o.Src || b.Alt != o.Alt || b.Caption != o.Caption {
		return false
	}
	if b.Header != o.Header || b.ColSpan != o.ColSpan || b.RowSpan != o.RowSpan ||
		b.Align != o.Align {
		return false
	}
	if b.Variant != o.Variant || b.Expression != o.Expression ||
		b.DisplayMode != o.DisplayMode {
		return false
	}
	if b.HTML != o.HTML || b.Sanitized != o.Sanitized || b.Title != o.Title {
		return false
	}
	if len(b.Children) != len(o.Children) {
		return false
	}
	for i := range b.Children {
		if !b.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// EqualAll reports pairwise structural equality between two block slices.
func EqualAll(a, b []*Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Count returns the total number of blocks in the slice, including nested
// children.
func Count(bs []*Block) int {
	n := 0
	for _, b := range bs {
		n += 1 + Count(b.Children)
	}
	return n
}

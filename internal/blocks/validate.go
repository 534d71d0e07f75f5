package blocks

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// calloutVariants is the closed set accepted on callout blocks.
var calloutVariants = []CalloutVariant{
	CalloutInfo, CalloutWarning, CalloutError, CalloutSuccess, CalloutTip, CalloutNote,
}

// Validate checks a block tree against the structural rules of the model and
// returns one entry per violated rule. It never panics and never stops at
// the first finding; an empty result means the tree is valid.
func Validate(bs []*Block) []ValidationError {
	var out []ValidationError
	for _, b := range bs {
		validateNode(b, nil, &out)
	}
	return out
}

// validateNode validates one block in the context of its parent and recurses
// into its children.
func validateNode(b *Block, parent *Block, out *[]ValidationError) {
	if b == nil {
		*out = append(*out, ValidationError{
			Kind:     "nil-block",
			Message:  "tree contains a nil block",
			Severity: SeverityError,
		})
		return
	}

	if err := b.validateFields(); err != nil {
		if errs, ok := err.(validation.Errors); ok {
			for field, ferr := range errs {
				*out = append(*out, ValidationError{
					Kind:     "invalid-field",
					Message:  fmt.Sprintf("%s: %s %v", b.Type, field, ferr),
					Severity: SeverityError,
					BlockID:  b.ID,
				})
			}
		} else {
			*out = append(*out, ValidationError{
				Kind:     "invalid-field",
				Message:  err.Error(),
				Severity: SeverityError,
				BlockID:  b.ID,
			})
		}
	}

	if kind, msg := checkPlacement(b, parent); kind != "" {
		*out = append(*out, ValidationError{
			Kind:     kind,
			Message:  msg,
			Severity: SeverityError,
			BlockID:  b.ID,
		})
	}

	for _, c := range b.Children {
		validateNode(c, b, out)
	}
}

// validateFields applies the per-variant field rules.
func (b *Block) validateFields() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Type, validation.Required, validation.By(validBlockType)),
		validation.Field(&b.Level,
			validation.When(b.Type == TypeHeading, validation.Required, validation.Min(1), validation.Max(6))),
		validation.Field(&b.Variant,
			validation.When(b.Type == TypeCallout, validation.Required, validation.By(validCalloutVariant))),
		validation.Field(&b.Src,
			validation.When(b.Type == TypeImage, validation.Required)),
		validation.Field(&b.Expression,
			validation.When(b.Type == TypeMath, validation.Required)),
	)
}

func validBlockType(value interface{}) error {
	t, _ := value.(BlockType)
	if !ValidType(t) {
		return fmt.Errorf("unknown block type %q", t)
	}
	return nil
}

func validCalloutVariant(value interface{}) error {
	v, _ := value.(CalloutVariant)
	for _, known := range calloutVariants {
		if v == known {
			return nil
		}
	}
	return fmt.Errorf("unknown callout variant %q", v)
}

// checkPlacement enforces the container rules: list items live under lists,
// table rows under tables, table cells under table rows.
func checkPlacement(b *Block, parent *Block) (kind, msg string) {
	switch b.Type {
	case TypeListItem:
		if parent == nil || parent.Type != TypeList {
			return "orphan-list-item", "list-item outside of a list"
		}
	case TypeTableRow:
		if parent == nil || parent.Type != TypeTable {
			return "orphan-table-row", "table-row outside of a table"
		}
	case TypeTableCell:
		if parent == nil || parent.Type != TypeTableRow {
			return "orphan-table-cell", "table-cell outside of a table-row"
		}
	}
	return "", ""
}

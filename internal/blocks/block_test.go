package blocks

import "testing"

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New(TypeText)
	b := New(TypeText)
	if a.ID == "" || b.ID == "" {
		t.Fatalf("expected non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.ID == b.ID {
		t.Fatalf("ids must be unique, both were %q", a.ID)
	}
}

func TestEnsureIDRecursive(t *testing.T) {
	b := &Block{Type: TypeList, Children: []*Block{
		{Type: TypeListItem, Children: []*Block{{Type: TypeText, Text: "x"}}},
	}}
	b.EnsureID()

	if b.ID == "" {
		t.Fatal("root id not assigned")
	}
	if b.Children[0].ID == "" || b.Children[0].Children[0].ID == "" {
		t.Fatal("child ids not assigned")
	}
}

func TestCloneIsDeep(t *testing.T) {
	checked := true
	orig := New(TypeList)
	orig.Children = []*Block{{
		ID:             "item",
		Type:           TypeListItem,
		Checked:        &checked,
		HighlightLines: []int{1, 2},
	}}

	cp := orig.Clone()
	cp.Children[0].Text = "changed"
	*cp.Children[0].Checked = false
	cp.Children[0].HighlightLines[0] = 99

	if orig.Children[0].Text == "changed" {
		t.Fatal("clone shares child structs with original")
	}
	if !*orig.Children[0].Checked {
		t.Fatal("clone shares checked pointer with original")
	}
	if orig.Children[0].HighlightLines[0] == 99 {
		t.Fatal("clone shares highlight slice with original")
	}
}

func TestEqualIgnoresIDsAndTimestamps(t *testing.T) {
	a := New(TypeHeading)
	a.Level = 2
	a.Text = "Title"
	b := New(TypeHeading)
	b.Level = 2
	b.Text = "Title"

	if !a.Equal(b) {
		t.Fatal("blocks differing only in id/timestamp should be equal")
	}

	b.Level = 3
	if a.Equal(b) {
		t.Fatal("blocks with different levels should not be equal")
	}
}

func TestEqualComparesChildren(t *testing.T) {
	a := &Block{Type: TypeQuote, Children: []*Block{{Type: TypeText, Text: "x"}}}
	b := &Block{Type: TypeQuote, Children: []*Block{{Type: TypeText, Text: "x"}}}
	c := &Block{Type: TypeQuote, Children: []*Block{{Type: TypeText, Text: "y"}}}

	if !a.Equal(b) {
		t.Fatal("equal children should compare equal")
	}
	if a.Equal(c) {
		t.Fatal("different children should not compare equal")
	}
}

func TestCountIncludesNested(t *testing.T) {
	bs := []*Block{
		{Type: TypeList, Children: []*Block{
			{Type: TypeListItem, Children: []*Block{{Type: TypeText}}},
			{Type: TypeListItem},
		}},
		{Type: TypeDivider},
	}
	if got := Count(bs); got != 5 {
		t.Fatalf("Count=%d, want 5", got)
	}
}

func TestValidType(t *testing.T) {
	if !ValidType(TypeCallout) {
		t.Fatal("callout should be valid")
	}
	if ValidType("bogus") {
		t.Fatal("bogus should not be valid")
	}
}

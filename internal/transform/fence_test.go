package transform

import (
	"reflect"
	"testing"
)

func TestParseFenceInfo(t *testing.T) {
	cases := []struct {
		info     string
		language string
		filename string
		lines    []int
	}{
		{"go", "go", "", nil},
		{"GO", "go", "", nil},
		{`go filename="main.go"`, "go", "main.go", nil},
		{"go {2,4-6}", "go", "", []int{2, 4, 5, 6}},
		{`ts filename="app.ts" {1,3-5}`, "ts", "app.ts", []int{1, 3, 4, 5}},
		{"{1}", "", "", []int{1}},
		{"", "", "", nil},
	}

	for _, tc := range cases {
		meta := parseFenceInfo(tc.info)
		if meta.language != tc.language {
			t.Fatalf("info %q: language=%q, want %q", tc.info, meta.language, tc.language)
		}
		if meta.filename != tc.filename {
			t.Fatalf("info %q: filename=%q, want %q", tc.info, meta.filename, tc.filename)
		}
		if !reflect.DeepEqual(meta.highlight, tc.lines) {
			t.Fatalf("info %q: highlight=%v, want %v", tc.info, meta.highlight, tc.lines)
		}
	}
}

func TestExpandLineRanges(t *testing.T) {
	cases := []struct {
		spec string
		want []int
	}{
		{"2,4-6", []int{2, 4, 5, 6}},
		{"5-3", nil},         // inverted range skipped
		{"1,1,2", []int{1, 2}}, // deduplicated
		{"7, 9 - 11", []int{7, 9, 10, 11}},
		{"a,b", nil},
		{"", nil},
	}
	for _, tc := range cases {
		if got := expandLineRanges(tc.spec); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("expandLineRanges(%q)=%v, want %v", tc.spec, got, tc.want)
		}
	}
}

package transform

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	filenameRe  = regexp.MustCompile(`filename="([^"]*)"`)
	highlightRe = regexp.MustCompile(`\{([0-9,\s-]+)\}`)
)

// fenceMeta is the parsed form of a code fence info string, e.g.
//
//	go filename="main.go" {1,3-5}
type fenceMeta struct {
	language  string
	filename  string
	highlight []int
}

// parseFenceInfo splits a fence info string into language tag, optional
// filename token, and optional highlighted-line set. The language is
// normalized to lowercase; ranges like 3-5 expand into explicit sorted line
// numbers.
func parseFenceInfo(info string) fenceMeta {
	meta := fenceMeta{}

	fields := strings.Fields(info)
	if len(fields) > 0 && !strings.HasPrefix(fields[0], "{") &&
		!strings.Contains(fields[0], "=") {
		meta.language = strings.ToLower(fields[0])
	}

	if m := filenameRe.FindStringSubmatch(info); m != nil {
		meta.filename = m[1]
	}

	if m := highlightRe.FindStringSubmatch(info); m != nil {
		meta.highlight = expandLineRanges(m[1])
	}

	return meta
}

// expandLineRanges turns "2,4-6" into [2 4 5 6]. Malformed segments are
// skipped; the result is sorted and deduplicated.
func expandLineRanges(spec string) []int {
	seen := map[int]struct{}{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || start > end {
				continue
			}
			for n := start; n <= end; n++ {
				seen[n] = struct{}{}
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		seen[n] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

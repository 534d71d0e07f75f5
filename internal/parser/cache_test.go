package parser

import (
	"fmt"
	"testing"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

func resultFor(tag string) *blocks.ParseResult {
	return &blocks.ParseResult{
		Success: true,
		Content: blocks.NewMessageContent(blocks.FormatMarkdown, tag, nil),
	}
}

func TestCacheGetMiss(t *testing.T) {
	c := newResultCache(10)
	if got := c.get("missing"); got != nil {
		t.Fatalf("expected nil on miss, got %+v", got)
	}
}

func TestCachePutGet(t *testing.T) {
	c := newResultCache(10)
	r := resultFor("a")
	c.put("a", r)
	if got := c.get("a"); got != r {
		t.Fatalf("got %+v, want stored result", got)
	}
	if c.len() != 1 {
		t.Fatalf("len=%d, want 1", c.len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newResultCache(3)
	for _, k := range []string{"a", "b", "c"} {
		c.put(k, resultFor(k))
	}

	// Touch "a" so "b" becomes the oldest.
	if c.get("a") == nil {
		t.Fatal("a should be cached")
	}

	c.put("d", resultFor("d"))

	if c.get("b") != nil {
		t.Fatal("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if c.get(k) == nil {
			t.Fatalf("%s should have survived eviction", k)
		}
	}
	if c.len() != 3 {
		t.Fatalf("len=%d, want 3", c.len())
	}
}

func TestCacheCapacityPlusOne(t *testing.T) {
	const capacity = 5
	c := newResultCache(capacity)
	for i := 0; i <= capacity; i++ {
		c.put(fmt.Sprintf("k%d", i), resultFor("x"))
	}
	if c.len() != capacity {
		t.Fatalf("len=%d, want %d", c.len(), capacity)
	}
	if c.get("k0") != nil {
		t.Fatal("k0 was the least recently used and should be gone")
	}
	if c.get("k1") == nil {
		t.Fatal("k1 should remain")
	}
}

func TestCachePutExistingUpdates(t *testing.T) {
	c := newResultCache(2)
	c.put("a", resultFor("old"))
	updated := resultFor("new")
	c.put("a", updated)
	if got := c.get("a"); got != updated {
		t.Fatal("existing key was not updated")
	}
	if c.len() != 1 {
		t.Fatalf("len=%d, want 1", c.len())
	}
}

func TestCacheClear(t *testing.T) {
	c := newResultCache(2)
	c.put("a", resultFor("a"))
	c.clear()
	if c.len() != 0 || c.get("a") != nil {
		t.Fatal("clear did not empty the cache")
	}
}

func TestCacheKeyTruncatesPrefix(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	k1 := cacheKey(string(long), blocks.FormatMarkdown)
	k2 := cacheKey(string(long), blocks.FormatHTML)
	if k1 == k2 {
		t.Fatal("format must participate in the key")
	}

	// Same prefix and length but different tails collide; that is the
	// documented tradeoff of the truncated key.
	tail := append(append([]byte(nil), long[:499]...), 'b')
	if cacheKey(string(long), blocks.FormatMarkdown) != cacheKey(string(tail), blocks.FormatMarkdown) {
		t.Fatal("expected prefix+length key to collide for shared-prefix inputs")
	}

	short := cacheKey("abc", blocks.FormatMarkdown)
	if short != "abc:3:markdown" {
		t.Fatalf("short key=%q", short)
	}
}

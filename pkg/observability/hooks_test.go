package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	NoopLayoutHooks{}.OnLayoutStart(ctx, 10)
	NoopLayoutHooks{}.OnLayoutComplete(ctx, 5, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "tree")
	c.OnCacheSet(ctx, "artifact", 1024)

	NoopSourceHooks{}.OnFetchStart(ctx, "mongo")
	NoopSourceHooks{}.OnFetchComplete(ctx, "mongo", 3, time.Second, nil)

	NoopViewHooks{}.OnToggle(ctx, "A", true)
	NoopViewHooks{}.OnFit(ctx, 0.5)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should default to NoopLayoutHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Source() should default to NoopSourceHooks")
	}
	if _, ok := View().(NoopViewHooks); !ok {
		t.Error("View() should default to NoopViewHooks")
	}

	layout := &testLayoutHooks{}
	SetLayoutHooks(layout)
	if Layout() != layout {
		t.Error("SetLayoutHooks did not register")
	}
	SetLayoutHooks(nil)
	if Layout() != layout {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetAll(t *testing.T) {
	Reset()
	defer Reset()

	c := &Counters{}
	SetAll(c)
	if Layout() != LayoutHooks(c) || Cache() != CacheHooks(c) || Source() != SourceHooks(c) || View() != ViewHooks(c) {
		t.Error("SetAll should register every implemented interface")
	}

	SetAll(&testLayoutHooks{})
	if Cache() != CacheHooks(c) {
		t.Error("SetAll should leave unimplemented interfaces alone")
	}
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := &Counters{}

	c.OnLayoutComplete(ctx, 5, 2*time.Millisecond, nil)
	c.OnLayoutComplete(ctx, 0, time.Millisecond, errors.New("boom"))
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheMiss(ctx, "tree")
	c.OnFetchComplete(ctx, "file", 3, time.Millisecond, nil)
	c.OnToggle(ctx, "A", true)
	c.OnFit(ctx, 1)

	want := CounterSnapshot{
		Layouts: 2, LayoutErrors: 1, LayoutTime: 3 * time.Millisecond,
		CacheHits: 1, CacheMisses: 2, Fetches: 1, Toggles: 1, Fits: 1,
	}
	if got := c.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnLayoutComplete(ctx, 7, time.Millisecond, nil)
	h.OnFetchComplete(ctx, "mongo", 0, time.Millisecond, errors.New("refused"))
	h.OnToggle(ctx, "A", true)

	out := buf.String()
	for _, want := range []string{"layout complete", "boxes=7", "fetch failed", "refused", "toggle", "node=A"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testLayoutHooks struct{ NoopLayoutHooks }

func TestMulti(t *testing.T) {
	ctx := context.Background()
	a, b := &Counters{}, &Counters{}
	m := Multi{a, b, "not a hook"}

	m.OnLayoutStart(ctx, 3)
	m.OnLayoutComplete(ctx, 3, time.Millisecond, nil)
	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "tree")
	m.OnCacheSet(ctx, "tree", 10)
	m.OnFetchStart(ctx, "file")
	m.OnFetchComplete(ctx, "file", 3, time.Millisecond, nil)
	m.OnToggle(ctx, "A", true)
	m.OnFit(ctx, 0.5)

	want := CounterSnapshot{
		Layouts: 1, LayoutTime: time.Millisecond,
		CacheHits: 1, CacheMisses: 1, Fetches: 1, Toggles: 1, Fits: 1,
	}
	for i, c := range []*Counters{a, b} {
		if got := c.Snapshot(); got != want {
			t.Errorf("member %d: Snapshot() = %+v, want %+v", i, got, want)
		}
	}
}

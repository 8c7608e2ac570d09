package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopReplayHooks{}
	r.OnBuildStart(ctx, "MATERIAL", 12)
	r.OnBuildComplete(ctx, "MATERIAL", 10, 2, 1, time.Second, nil)

	d := NoopRenderHooks{}
	d.OnRenderStart(ctx, "svg")
	d.OnRenderComplete(ctx, "svg", 2048, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "script", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	// Defaults are noop.
	if _, ok := Replay().(NoopReplayHooks); !ok {
		t.Error("Replay() should return NoopReplayHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customReplay := &testReplayHooks{}
	SetReplayHooks(customReplay)
	if Replay() != customReplay {
		t.Error("SetReplayHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Replay().(NoopReplayHooks); !ok {
		t.Error("Reset() should restore NoopReplayHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testReplayHooks{}
	SetReplayHooks(custom)

	SetReplayHooks(nil)

	if Replay() != custom {
		t.Error("SetReplayHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testReplayHooks struct{ NoopReplayHooks }
type testRenderHooks struct{ NoopRenderHooks }
type testCacheHooks struct{ NoopCacheHooks }

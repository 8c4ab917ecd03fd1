package observability

import (
	"context"
	"testing"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Sheet hooks
	s := NoopSheetHooks{}
	s.OnSet(KindFormula)
	s.OnRejected("CIRCULAR_DEPENDENCY")
	s.OnEvaluate()
	s.OnInvalidate(3)
	s.OnClear(true)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "svg")
	c.OnCacheMiss(ctx, "png")
	c.OnCacheSet(ctx, "svg", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Sheet().(NoopSheetHooks); !ok {
		t.Error("Sheet() should return NoopSheetHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Set custom hooks
	customSheet := &testSheetHooks{}
	SetSheetHooks(customSheet)
	if Sheet() != customSheet {
		t.Error("SetSheetHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Sheet().(NoopSheetHooks); !ok {
		t.Error("Reset() should restore NoopSheetHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSheetHooks{}
	SetSheetHooks(custom)

	// Setting nil should be ignored
	SetSheetHooks(nil)

	if Sheet() != custom {
		t.Error("SetSheetHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testSheetHooks struct{ NoopSheetHooks }
type testCacheHooks struct{ NoopCacheHooks }

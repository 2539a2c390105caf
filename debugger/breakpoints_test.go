package debugger

import "testing"

func TestBreakpointManagerSetBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.SetBreakpoint(0x3000)
	if bp == nil {
		t.Fatal("SetBreakpoint returned nil")
	}
	if bp.ID != 1 {
		t.Errorf("expected ID 1, got %d", bp.ID)
	}
	if bp.Address != 0x3000 {
		t.Errorf("expected address x3000, got x%04X", bp.Address)
	}
	if !bp.Enabled {
		t.Error("breakpoint should be enabled by default")
	}
}

func TestBreakpointManagerSetMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.SetBreakpoint(0x3000)
	bp2 := bm.SetBreakpoint(0x3010)

	if bp1.ID == bp2.ID {
		t.Error("breakpoint IDs should be unique")
	}
	if len(bm.All()) != 2 {
		t.Errorf("expected 2 breakpoints, got %d", len(bm.All()))
	}
}

func TestBreakpointManagerClearThenSetAllocatesFreshID(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.SetBreakpoint(0x3000)
	if err := bm.ClearBreakpoint(0x3000); err != nil {
		t.Fatalf("ClearBreakpoint failed: %v", err)
	}
	bp2 := bm.SetBreakpoint(0x3000)

	if bp1.ID == bp2.ID {
		t.Error("clearing then resetting should allocate a fresh ID")
	}
	if !bm.HasBreakpoint(0x3000) {
		t.Error("breakpoint should be active after reset")
	}
}

func TestBreakpointManagerClearBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()
	bm.SetBreakpoint(0x3000)

	if err := bm.ClearBreakpoint(0x3000); err != nil {
		t.Fatalf("ClearBreakpoint failed: %v", err)
	}
	if bm.HasBreakpoint(0x3000) {
		t.Error("breakpoint not cleared")
	}
}

func TestBreakpointManagerClearMissingReturnsError(t *testing.T) {
	bm := NewBreakpointManager()
	if err := bm.ClearBreakpoint(0x4000); err == nil {
		t.Error("expected error clearing nonexistent breakpoint")
	}
}

func TestBreakpointManagerClearAll(t *testing.T) {
	bm := NewBreakpointManager()
	bm.SetBreakpoint(0x3000)
	bm.SetBreakpoint(0x3010)

	bm.Clear()
	if len(bm.All()) != 0 {
		t.Errorf("expected 0 breakpoints after Clear, got %d", len(bm.All()))
	}
}

func TestBreakpointManagerHasBreakpointFalseForUnset(t *testing.T) {
	bm := NewBreakpointManager()
	if bm.HasBreakpoint(0x3000) {
		t.Error("expected no breakpoint at unset address")
	}
}

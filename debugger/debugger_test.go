package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lc3toolchain/lc3/vm"
)

func loopProgram() *vm.VM {
	m := vm.New()
	m.LoadWords(0x3000, []uint16{
		0x1021, // ADD R0, R0, #1
		0x0FFE, // BRnzp -2 (back to ADD)
		0xF025, // HALT
	})
	m.SetPC(0x3000)
	return m
}

func TestDebuggerStepAdvancesOneInstruction(t *testing.T) {
	d := NewDebugger(loopProgram())

	ev := d.Step()
	assert.Equal(t, vm.EventNone, ev.Kind)
	assert.Equal(t, uint16(0x3001), d.VM.GetPC())
	assert.Equal(t, uint16(1), d.VM.GetRegister(0))
}

func TestDebuggerContinueStopsAtBreakpoint(t *testing.T) {
	d := NewDebugger(loopProgram())
	d.SetBreakpoint(0x3000)

	ev, steps := d.Continue(100)
	assert.Equal(t, vm.EventNone, ev.Kind)
	assert.Equal(t, uint16(0x3000), d.VM.GetPC())
	assert.Greater(t, steps, 0)
}

func TestDebuggerContinueRunsToHaltWithoutBreakpoints(t *testing.T) {
	m := vm.New()
	m.LoadWords(0x3000, []uint16{
		0x1021, // ADD R0, R0, #1
		0xF025, // HALT
	})
	m.SetPC(0x3000)
	d := NewDebugger(m)

	ev, steps := d.Continue(100)
	require.Equal(t, vm.EventHalt, ev.Kind)
	assert.Equal(t, 2, steps)
}

func TestDebuggerSetAndClearBreakpoint(t *testing.T) {
	d := NewDebugger(vm.New())

	bp := d.SetBreakpoint(0x3050)
	assert.Equal(t, uint16(0x3050), bp.Address)
	assert.True(t, d.Breakpoints.HasBreakpoint(0x3050))

	require.NoError(t, d.ClearBreakpoint(0x3050))
	assert.False(t, d.Breakpoints.HasBreakpoint(0x3050))
}

func TestDebuggerResolveAddressFromSymbols(t *testing.T) {
	d := NewDebugger(vm.New())
	d.LoadSymbols(map[string]uint16{"LOOP": 0x3010})

	addr, ok := d.ResolveAddress("loop")
	require.True(t, ok)
	assert.Equal(t, uint16(0x3010), addr)
}

func TestDebuggerResolveAddressHexLiteral(t *testing.T) {
	d := NewDebugger(vm.New())

	addr, ok := d.ResolveAddress("x3050")
	require.True(t, ok)
	assert.Equal(t, uint16(0x3050), addr)
}

func TestDebuggerResolveAddressDecimalLiteral(t *testing.T) {
	d := NewDebugger(vm.New())

	addr, ok := d.ResolveAddress("12288")
	require.True(t, ok)
	assert.Equal(t, uint16(12288), addr)
}

func TestDebuggerResolveAddressUnknownFails(t *testing.T) {
	d := NewDebugger(vm.New())

	_, ok := d.ResolveAddress("NOPE")
	assert.False(t, ok)
}

func TestDebuggerHistoryRecordsCommandsAndBounds(t *testing.T) {
	d := NewDebugger(loopProgram())
	d.HistorySize = 2

	d.Step()
	d.Step()
	d.Step()

	require.Len(t, d.History, 2)
	assert.Equal(t, []string{"step", "step"}, d.History)
}

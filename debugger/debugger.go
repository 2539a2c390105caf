package debugger

import (
	"strconv"
	"strings"

	"github.com/lc3toolchain/lc3/vm"
)

// Debugger wraps a vm.VM with breakpoint-aware stepping and a symbol
// table for resolving label names typed at the prompt.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Symbols     map[string]uint16

	Running     bool
	LastEvent   vm.Event
	History     []string
	HistorySize int
}

// NewDebugger wraps machine for interactive stepping.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Symbols:     make(map[string]uint16),
		HistorySize: 1000,
	}
}

// LoadSymbols installs the symbol table used by ResolveAddress.
func (d *Debugger) LoadSymbols(symbols map[string]uint16) {
	d.Symbols = symbols
}

// ResolveAddress resolves a label name or a hex/decimal literal to an
// address.
func (d *Debugger) ResolveAddress(text string) (uint16, bool) {
	name := strings.ToUpper(strings.TrimSpace(text))
	if addr, ok := d.Symbols[name]; ok {
		return addr, true
	}
	if strings.HasPrefix(name, "X") {
		v, err := strconv.ParseUint(name[1:], 16, 16)
		if err != nil {
			return 0, false
		}
		return uint16(v), true
	}
	v, err := strconv.ParseUint(name, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// SetBreakpoint adds a breakpoint at a resolved address.
func (d *Debugger) SetBreakpoint(addr uint16) *Breakpoint {
	return d.Breakpoints.SetBreakpoint(addr)
}

// ClearBreakpoint removes the breakpoint at addr.
func (d *Debugger) ClearBreakpoint(addr uint16) error {
	return d.Breakpoints.ClearBreakpoint(addr)
}

// recordCommand appends to the bounded command history, dropping the
// oldest entry once HistorySize is reached.
func (d *Debugger) recordCommand(cmd string) {
	d.History = append(d.History, cmd)
	if len(d.History) > d.HistorySize {
		d.History = d.History[len(d.History)-d.HistorySize:]
	}
}

// Step executes exactly one instruction and records the resulting event.
func (d *Debugger) Step() vm.Event {
	d.recordCommand("step")
	ev := d.VM.Step()
	d.LastEvent = ev
	return ev
}

// Continue runs until a breakpoint is hit or the VM produces a
// non-EventNone event. maxSteps bounds a runaway program; Continue
// returns the event and the number of instructions actually executed.
func (d *Debugger) Continue(maxSteps int) (vm.Event, int) {
	d.recordCommand("continue")
	for i := 0; i < maxSteps; i++ {
		if i > 0 && d.Breakpoints.HasBreakpoint(d.VM.GetPC()) {
			return vm.Event{Kind: vm.EventNone}, i
		}
		ev := d.VM.Step()
		d.LastEvent = ev
		if ev.Kind != vm.EventNone {
			return ev, i + 1
		}
	}
	return vm.Event{Kind: vm.EventNone}, maxSteps
}

package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lc3toolchain/lc3/disasm"
)

// TUI is the terminal interface for interactively stepping a Debugger.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex

	RegisterView    *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	DisassemblyAddr uint16
}

// NewTUI wires a TUI around debugger.
func NewTUI(debugger *Debugger) *TUI {
	t := &TUI{Debugger: debugger, App: tview.NewApplication()}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 10, 0, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand(fmt.Sprintf("break x%04X", t.Debugger.VM.GetPC()))
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

// executeCommand interprets a single debugger command line. Supported
// commands: step, continue, break <addr>, clear <addr>.
func (t *TUI) executeCommand(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}

	switch strings.ToLower(fields[0]) {
	case "step", "s":
		ev := t.Debugger.Step()
		t.WriteOutput(fmt.Sprintf("step -> %s\n", ev.Kind))

	case "continue", "c":
		ev, n := t.Debugger.Continue(1_000_000)
		t.WriteOutput(fmt.Sprintf("continue -> %s after %d instructions\n", ev.Kind, n))

	case "break", "b":
		if len(fields) < 2 {
			t.WriteOutput("usage: break <address|label>\n")
			break
		}
		addr, ok := t.Debugger.ResolveAddress(fields[1])
		if !ok {
			t.WriteOutput(fmt.Sprintf("unknown address %q\n", fields[1]))
			break
		}
		bp := t.Debugger.SetBreakpoint(addr)
		t.WriteOutput(fmt.Sprintf("breakpoint %d set at x%04X\n", bp.ID, bp.Address))

	case "clear":
		if len(fields) < 2 {
			t.WriteOutput("usage: clear <address|label>\n")
			break
		}
		addr, ok := t.Debugger.ResolveAddress(fields[1])
		if !ok {
			t.WriteOutput(fmt.Sprintf("unknown address %q\n", fields[1]))
			break
		}
		if err := t.Debugger.ClearBreakpoint(addr); err != nil {
			t.WriteOutput(fmt.Sprintf("error: %v\n", err))
		}

	default:
		t.WriteOutput(fmt.Sprintf("unknown command %q\n", fields[0]))
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output view and scrolls to the end.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current Debugger state.
func (t *TUI) RefreshAll() {
	t.UpdateRegisterView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) UpdateRegisterView() {
	t.RegisterView.Clear()

	m := t.Debugger.VM
	var lines []string

	for row := 0; row < 2; row++ {
		var cols []string
		for col := 0; col < 4; col++ {
			r := row*4 + col
			cols = append(cols, fmt.Sprintf("R%d: x%04X", r, m.GetRegister(r)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("PC:  x%04X", m.GetPC()))

	n, z, p := m.ConditionFlags()
	flags := condFlagString(n, z, p)
	lines = append(lines, fmt.Sprintf("PSR: x%04X  Flags: %s", m.GetPSR(), flags))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func condFlagString(n, z, p bool) string {
	flag := func(set bool, letter, color string) string {
		if set {
			return fmt.Sprintf("[%s]%s[white]", color, letter)
		}
		return strings.ToLower(letter)
	}
	return flag(n, "N", "red") + flag(z, "Z", "blue") + flag(p, "P", "green")
}

func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()

	m := t.Debugger.VM
	pc := m.GetPC()

	start := pc - 8
	if start > pc {
		start = 0
	}

	var lines []string
	for addr := start; addr < start+20; addr++ {
		word := m.GetMemory(addr)
		text := disasm.Disassemble(word, addr+1, nil)

		marker := "  "
		if addr == pc {
			marker = "[yellow]->[white]"
		}
		if t.Debugger.Breakpoints.HasBreakpoint(addr) {
			marker = "[red]* [white]"
		}

		lines = append(lines, fmt.Sprintf("%s x%04X: %s", marker, addr, text))
		if addr == 0xFFFF {
			break
		}
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	bps := t.Debugger.Breakpoints.All()
	if len(bps) == 0 {
		t.BreakpointsView.SetText("[yellow]No breakpoints set[white]")
		return
	}

	var lines []string
	for _, bp := range bps {
		status := "enabled"
		color := "green"
		if !bp.Enabled {
			status = "disabled"
			color = "red"
		}
		lines = append(lines, fmt.Sprintf("%d: [%s]%s[white] x%04X", bp.ID, color, status, bp.Address))
	}
	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]LC-3 Debugger[white]\n")
	t.WriteOutput("Press F11 to step, F5 to continue, F9 to set a breakpoint\n\n")
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop terminates the TUI event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}

// Command lc3 is a thin CLI wrapper over the toolchain packages: assemble
// source into an object file, run an object file on the VM, step it
// under the TUI debugger, or dump the analyzer's token/diagnostic view.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/lc3toolchain/lc3/analyzer"
	"github.com/lc3toolchain/lc3/assembler"
	"github.com/lc3toolchain/lc3/config"
	"github.com/lc3toolchain/lc3/debugger"
	"github.com/lc3toolchain/lc3/objfile"
	"github.com/lc3toolchain/lc3/parser"
	"github.com/lc3toolchain/lc3/symtab"
	"github.com/lc3toolchain/lc3/vm"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lc3: ")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var exitCode int
	switch os.Args[1] {
	case "assemble":
		exitCode = runAssemble(os.Args[2:])
	case "run":
		exitCode = runRun(os.Args[2:], cfg)
	case "debug":
		exitCode = runDebug(os.Args[2:], cfg)
	case "tokens":
		exitCode = runTokens(os.Args[2:], cfg)
	case "-h", "--help", "help":
		printUsage()
		exitCode = 0
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		printUsage()
		exitCode = 1
	}
	os.Exit(exitCode)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  lc3 assemble <input.asm> [output.obj]")
	fmt.Fprintln(os.Stderr, "  lc3 run <program.obj> [--os <os.obj>]")
	fmt.Fprintln(os.Stderr, "  lc3 debug <program.obj> [--os <os.obj>]")
	fmt.Fprintln(os.Stderr, "  lc3 tokens <input.asm> [--format json|yaml]")
}

// runAssemble parses and assembles input.asm, writing the segmented
// object file format to output (or input.asm with its extension
// replaced by .obj).
func runAssemble(args []string) int {
	fs := flag.NewFlagSet("assemble", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: lc3 assemble <input.asm> [output.obj]")
		return 1
	}

	inputPath := fs.Arg(0)
	outputPath := defaultObjectPath(inputPath)
	if fs.NArg() >= 2 {
		outputPath = fs.Arg(1)
	}

	source, err := os.ReadFile(inputPath) // #nosec G304 -- user-specified assembly source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", inputPath, err)
		return 1
	}

	p := parser.NewParser(string(source))
	program, _ := p.Parse()
	if p.Errors().HasErrors() {
		fmt.Fprint(os.Stderr, p.Errors().Error())
		return 1
	}

	result := assembler.Assemble(program)
	if result.Errors.HasErrors() {
		fmt.Fprint(os.Stderr, result.Errors.Error())
		return 1
	}

	encoded := objfile.Encode(result.Segments, nil)
	if err := os.WriteFile(outputPath, encoded, 0644); err != nil { // #nosec G306 -- object file is not sensitive
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", outputPath, err)
		return 1
	}

	var totalWords int
	var firstOrigin uint16
	for i, seg := range result.Segments {
		totalWords += len(seg.Code)
		if i == 0 {
			firstOrigin = seg.Origin
		}
	}
	fmt.Printf("Assembled %d words to %s (origin: x%04X)\n", totalWords, outputPath, firstOrigin)
	return 0
}

func defaultObjectPath(inputPath string) string {
	for i := len(inputPath) - 1; i >= 0 && inputPath[i] != '/'; i-- {
		if inputPath[i] == '.' {
			return inputPath[:i] + ".obj"
		}
	}
	return inputPath + ".obj"
}

// loadMachine builds a VM from a program object, optionally layering an
// OS image loaded in os-mode beneath it.
func loadMachine(programPath, osPath string) (*vm.VM, error) {
	m := vm.New()

	if osPath != "" {
		osData, err := os.ReadFile(osPath) // #nosec G304 -- user-specified OS image path
		if err != nil {
			return nil, fmt.Errorf("reading OS image %s: %w", osPath, err)
		}
		osSegments, err := objfile.Decode(osData)
		if err != nil {
			return nil, fmt.Errorf("decoding OS image %s: %w", osPath, err)
		}
		m.LoadOSImage(toVMSegments(osSegments))
	}

	data, err := os.ReadFile(programPath) // #nosec G304 -- user-specified object file path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", programPath, err)
	}
	segments, err := objfile.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", programPath, err)
	}
	for i, seg := range segments {
		m.LoadWords(seg.Origin(), seg.Words())
		if i == 0 {
			m.SetPC(seg.Origin())
		}
	}

	m.InitMCR(0x8000)
	return m, nil
}

// toVMSegments adapts a decoded []objfile.Segment to []vm.Segment: the
// element types satisfy the same interface but Go won't convert the
// slice implicitly.
func toVMSegments(segments []objfile.Segment) []vm.Segment {
	out := make([]vm.Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
	}
	return out
}

// runRun loads an object file and drives it to completion on stdin/stdout.
func runRun(args []string, cfg *config.Config) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	osImage := fs.String("os", cfg.VM.OSImage, "OS image object file (enables os-mode)")
	maxSteps := fs.Uint64("max-steps", cfg.VM.MaxSteps, "maximum instructions to execute (0 = unbounded)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: lc3 run <program.obj> [--os <os.obj>]")
		return 1
	}

	m, err := loadMachine(fs.Arg(0), *osImage)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return drive(m, *maxSteps)
}

// drive steps m to completion, servicing ReadChar/Output events against
// stdin/stdout. Returns the process exit code.
func drive(m *vm.VM, maxSteps uint64) int {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	in := bufio.NewReader(os.Stdin)

	var steps uint64
	for {
		if maxSteps != 0 && steps >= maxSteps {
			fmt.Fprintf(os.Stderr, "lc3: exceeded max-steps (%d)\n", maxSteps)
			return 1
		}
		ev := m.Step()
		steps++

		switch ev.Kind {
		case vm.EventNone:
			continue
		case vm.EventOutput:
			out.WriteByte(ev.OutputByte)
		case vm.EventOutputString:
			out.Write(ev.OutputBytes)
		case vm.EventReadChar:
			out.Flush()
			b, err := readOneByte(in)
			if err != nil {
				m.DeliverChar(0)
				continue
			}
			m.DeliverChar(b)
		case vm.EventHalt:
			out.Flush()
			printRegisterDump(m)
			return 0
		case vm.EventError:
			out.Flush()
			fmt.Fprintf(os.Stderr, "runtime error: %v at x%04X\n", ev.ErrKind, ev.ErrValue)
			return 1
		}
	}
}

// printRegisterDump prints the final machine state after a halt.
func printRegisterDump(m *vm.VM) {
	fmt.Println("--- halted ---")
	for r := 0; r < 8; r += 4 {
		fmt.Printf("R%d: x%04X  R%d: x%04X  R%d: x%04X  R%d: x%04X\n",
			r, m.GetRegister(r), r+1, m.GetRegister(r+1), r+2, m.GetRegister(r+2), r+3, m.GetRegister(r+3))
	}
	fmt.Printf("PC:  x%04X  PSR: x%04X\n", m.GetPC(), m.GetPSR())
}

// readOneByte reads a single byte from stdin, using raw terminal mode
// when stdin is a TTY so the guest sees keystrokes without waiting for a
// newline; falls back to reading one line and taking its first byte
// otherwise (a pipe or redirected file has no "keystroke", only lines).
func readOneByte(r *bufio.Reader) (byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			return line[0], nil
		}
		return 0, err
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return r.ReadByte()
	}
	defer term.Restore(fd, oldState) // nolint:errcheck

	return r.ReadByte()
}

// runDebug launches the tview TUI debugger over an object file.
func runDebug(args []string, cfg *config.Config) int {
	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	osImage := fs.String("os", cfg.VM.OSImage, "OS image object file (enables os-mode)")
	sourcePath := fs.String("source", "", "assembly source to resolve labels at the debug prompt (default: <program>.asm)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: lc3 debug <program.obj> [--os <os.obj>] [--source <program.asm>]")
		return 1
	}

	m, err := loadMachine(fs.Arg(0), *osImage)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	d := debugger.NewDebugger(m)
	d.HistorySize = cfg.Debugger.HistorySize

	src := *sourcePath
	if src == "" {
		src = defaultSourcePath(fs.Arg(0))
	}
	if symbols := loadDebugSymbols(src); symbols != nil {
		d.LoadSymbols(symbols)
	}

	tui := debugger.NewTUI(d)
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
		return 1
	}
	return 0
}

// defaultSourcePath guesses the assembly source a program.obj was built
// from by swapping its extension for .asm, mirroring defaultObjectPath's
// reverse transform.
func defaultSourcePath(objectPath string) string {
	for i := len(objectPath) - 1; i >= 0 && objectPath[i] != '/'; i-- {
		if objectPath[i] == '.' {
			return objectPath[:i] + ".asm"
		}
	}
	return objectPath + ".asm"
}

// loadDebugSymbols parses sourcePath and builds the name-to-address map the
// debugger needs to resolve labels typed at the prompt. It returns nil if
// the source can't be read, since label resolution is a convenience, not a
// requirement for debugging a bare object file.
func loadDebugSymbols(sourcePath string) map[string]uint16 {
	source, err := os.ReadFile(sourcePath) // #nosec G304 -- user-specified assembly source path
	if err != nil {
		return nil
	}
	p := parser.NewParser(string(source))
	program, _ := p.Parse()
	table := symtab.BuildTable(program)
	symbols := make(map[string]uint16, len(table.Symbols))
	for name, sym := range table.Symbols {
		symbols[name] = sym.Address
	}
	return symbols
}

// tokensOutput is the structured dump written by the tokens subcommand.
type tokensOutput struct {
	Diagnostics []analyzer.Diagnostic    `json:"diagnostics" yaml:"diagnostics"`
	Symbols     []analyzer.SymbolInfo    `json:"symbols" yaml:"symbols"`
	Tokens      []analyzer.SemanticToken `json:"tokens" yaml:"tokens"`
}

// runTokens analyzes input.asm and dumps its diagnostics, symbol table,
// and semantic-token stream, for editor-tooling debugging.
func runTokens(args []string, cfg *config.Config) int {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	format := fs.String("format", cfg.Analyzer.TokenFormat, "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: lc3 tokens <input.asm> [--format json|yaml]")
		return 1
	}

	source, err := os.ReadFile(fs.Arg(0)) // #nosec G304 -- user-specified assembly source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", fs.Arg(0), err)
		return 1
	}

	doc := analyzer.Analyze(string(source))
	out := tokensOutput{
		Diagnostics: doc.Diagnostics(),
		Symbols:     doc.SymbolList(),
		Tokens:      doc.Tokens(),
	}

	switch *format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encoding yaml: %v\n", err)
			return 1
		}
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encoding json: %v\n", err)
			return 1
		}
	}
	return 0
}

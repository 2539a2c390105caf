// Package vm implements the LC-3 virtual machine: the fetch-decode-execute
// loop, condition codes, memory-mapped I/O, and the supervisor/user-mode
// trap-and-RTI protocol. The VM never blocks on I/O — step and run return an
// Event and suspend whenever they need the host to do something: a pure
// value-based suspension point, no callbacks or goroutines required.
package vm

const (
	// MemSize is the number of 16-bit words of addressable memory.
	MemSize = 1 << 16

	// DefaultOrigin is the PC address Clear resets the machine to.
	DefaultOrigin = 0x3000
)

// PSR bit layout: bit 15 privilege (0=supervisor, 1=user), bits 10..8
// priority, bits 2..0 condition codes (N=4, Z=2, P=1).
const (
	psrPrivilegeBit = 1 << 15
	psrCondMask     = 0x0007

	CondN = 0x4
	CondZ = 0x2
	CondP = 0x1
)

// Memory-mapped I/O addresses.
const (
	AddrKBSR = 0xFE00
	AddrKBDR = 0xFE02
	AddrDSR  = 0xFE04
	AddrDDR  = 0xFE06
	AddrMCR  = 0xFFFE
)

// VM holds the complete LC-3 machine state: 64K words of memory, eight
// general-purpose registers, PC, PSR, the saved supervisor/user stack
// pointers used by the trap/RTI protocol, an os-mode flag, and the pending
// keyboard byte MMIO models as state rather than a side channel.
type VM struct {
	Memory [MemSize]uint16
	Reg    [8]uint16
	PC     uint16
	PSR    uint16

	SavedSSP uint16
	SavedUSP uint16

	OSMode bool

	kbPending bool
	kbByte    byte
}

// New creates a VM in its reset state.
func New() *VM {
	m := &VM{}
	m.Clear()
	return m
}

// Clear resets memory, registers, PC and PSR in place — no reallocation of
// the 64K memory array, per the "reset is in-place" design note. The
// os-mode flag is left untouched: it's a host-selected mode, not machine
// state that a program reset should clear.
func (m *VM) Clear() {
	for i := range m.Memory {
		m.Memory[i] = 0
	}
	for i := range m.Reg {
		m.Reg[i] = 0
	}
	m.PC = DefaultOrigin
	m.PSR = psrPrivilegeBit | CondZ // user mode, Z flag: 0x8002
	m.SavedSSP = 0
	m.SavedUSP = 0
	m.kbPending = false
	m.kbByte = 0
}

// IsUserMode reports whether the PSR's privilege bit selects user mode.
func (m *VM) IsUserMode() bool {
	return m.PSR&psrPrivilegeBit != 0
}

// ConditionFlags returns the three condition-code bits currently set.
func (m *VM) ConditionFlags() (n, z, p bool) {
	cc := m.PSR & psrCondMask
	return cc&CondN != 0, cc&CondZ != 0, cc&CondP != 0
}

func (m *VM) setConditionCodes(value uint16) {
	m.PSR &^= psrCondMask
	switch {
	case value == 0:
		m.PSR |= CondZ
	case value&0x8000 != 0:
		m.PSR |= CondN
	default:
		m.PSR |= CondP
	}
}

// signExtend replicates bit width-1 of val across the remaining bits of a
// 16-bit word.
func signExtend(val uint16, width uint) uint16 {
	if val&(1<<(width-1)) != 0 {
		return val | (^uint16(0) << width)
	}
	return val
}

// LoadWords copies words into memory starting at origin, wrapping the
// 16-bit address as it goes (matching how a too-long segment would wrap on
// real hardware rather than panicking).
func (m *VM) LoadWords(origin uint16, words []uint16) {
	addr := origin
	for _, w := range words {
		m.Memory[addr] = w
		addr++
	}
}

// SetInput publishes a keyboard byte to the MMIO keyboard register (KBSR/
// KBDR): the next KBDR read will consume it and KBSR will report "ready"
// until then. This is the low-level host-binding primitive; DeliverChar is
// the mode-aware helper for resuming after a ReadChar event.
func (m *VM) SetInput(b byte) {
	m.kbPending = true
	m.kbByte = b
}

// HasPendingInput reports whether a keyboard byte is buffered and unread.
func (m *VM) HasPendingInput() bool {
	return m.kbPending
}

// DeliverChar resumes execution after a ReadChar event with exactly one
// byte. In shortcut mode the byte lands
// directly in R0 (completing the GETC/IN trap that asked for it); in
// os-mode it's buffered into the keyboard register for the OS trap
// handler's own KBDR read.
func (m *VM) DeliverChar(b byte) {
	if m.OSMode {
		m.SetInput(b)
		return
	}
	m.Reg[0] = uint16(b)
}

// SetOSMode enables or disables os-mode trap/RTI semantics.
func (m *VM) SetOSMode(enabled bool) {
	m.OSMode = enabled
}

// InitMCR sets the raw stored value of the machine control register (the
// clock-running bit, bit 15, is what os-mode checks every step).
func (m *VM) InitMCR(value uint16) {
	m.Memory[AddrMCR] = value
}

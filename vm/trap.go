package vm

// Trap vectors with built-in shortcut-mode behavior.
const (
	trapGETC  = 0x20
	trapOUT   = 0x21
	trapPUTS  = 0x22
	trapIN    = 0x23
	trapPUTSP = 0x24
	trapHALT  = 0x25
)

// execTRAP dispatches a TRAP instruction. In shortcut mode the named
// vectors (GETC/OUT/PUTS/IN/PUTSP/HALT) are implemented directly as VM
// events with no trap-vector-table indirection; everything else reports
// EventError. In os-mode every vector goes through the full supervisor
// protocol, vectoring through memory[vector] like real hardware.
func (m *VM) execTRAP(vector uint8) Event {
	m.Reg[7] = m.PC

	if !m.OSMode {
		return m.execTrapShortcut(vector)
	}

	if m.IsUserMode() {
		m.SavedUSP = m.Reg[6]
		m.Reg[6] = m.SavedSSP
	}
	m.Reg[6]--
	m.rawWrite(m.Reg[6], m.PSR)
	m.Reg[6]--
	m.rawWrite(m.Reg[6], m.PC)

	m.PSR &^= psrPrivilegeBit
	m.PC = m.rawRead(uint16(vector))

	if vector == trapGETC && !m.kbPending {
		return Event{Kind: EventReadChar}
	}
	return noEvent
}

func (m *VM) execTrapShortcut(vector uint8) Event {
	switch vector {
	case trapGETC:
		if !m.kbPending {
			return Event{Kind: EventReadChar}
		}
		m.Reg[0] = uint16(m.kbByte)
		m.kbPending = false
		return noEvent

	case trapIN:
		// Same as GETC: a real OS would print a prompt first, but the
		// shortcut model has no notion of a prompt string, only the
		// single blocking read.
		if !m.kbPending {
			return Event{Kind: EventReadChar}
		}
		m.Reg[0] = uint16(m.kbByte)
		m.kbPending = false
		return noEvent

	case trapOUT:
		return Event{Kind: EventOutput, OutputByte: byte(m.Reg[0] & 0xFF)}

	case trapPUTS:
		var bytes []byte
		addr := m.Reg[0]
		for {
			w := m.Memory[addr]
			if w == 0 {
				break
			}
			bytes = append(bytes, byte(w&0xFF))
			addr++
		}
		return Event{Kind: EventOutputString, OutputBytes: bytes}

	case trapPUTSP:
		var bytes []byte
		addr := m.Reg[0]
	loop:
		for {
			w := m.Memory[addr]
			lo := byte(w & 0xFF)
			hi := byte((w >> 8) & 0xFF)
			if lo == 0 {
				break loop
			}
			bytes = append(bytes, lo)
			if hi == 0 {
				break loop
			}
			bytes = append(bytes, hi)
			addr++
		}
		return Event{Kind: EventOutputString, OutputBytes: bytes}

	case trapHALT:
		return Event{Kind: EventHalt}

	default:
		return Event{Kind: EventError, ErrKind: ErrUnimplementedTrap, ErrValue: uint16(vector)}
	}
}

// execRTI implements the return-from-trap protocol. It is a privileged
// instruction: executing it from user mode is an error rather than a
// no-op, so a buggy or malicious user program can't use it to escape to
// supervisor mode. Outside os-mode RTI is meaningless (shortcut mode never
// enters supervisor mode to begin with) and is a no-op.
func (m *VM) execRTI() Event {
	if !m.OSMode {
		return noEvent
	}
	if m.IsUserMode() {
		return Event{Kind: EventError, ErrKind: ErrPrivilegeViolation}
	}

	pc := m.rawRead(m.Reg[6])
	m.Reg[6]++
	psr := m.rawRead(m.Reg[6])
	m.Reg[6]++

	m.PC = pc
	m.PSR = psr

	if m.IsUserMode() {
		m.SavedSSP = m.Reg[6]
		m.Reg[6] = m.SavedUSP
	}
	return noEvent
}
